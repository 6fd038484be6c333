package goble

import (
	"sync"

	"github.com/go-ble/ble"
)

// The local adapter is opened once per process. On linux the HCI user channel is
// exclusive, so a second ble.Device for the same adapter fails to bind: scanning and
// dialing must go through the same device.
var (
	hostMu  sync.Mutex
	hostDev ble.Device
)

// HostDevice opens the adapter on first use and returns the same device afterwards.
// It also becomes the go-ble default device, which ble.Dial uses.
func HostDevice() (ble.Device, error) {
	hostMu.Lock()
	defer hostMu.Unlock()
	if hostDev != nil {
		return hostDev, nil
	}
	dev, err := DeviceFactory()
	if err != nil {
		return nil, NormalizeError(err)
	}
	ble.SetDefaultDevice(dev)
	hostDev = dev
	return dev, nil
}

// ReleaseHostDevice stops the adapter if it was opened. The next HostDevice call opens
// it again.
func ReleaseHostDevice() error {
	hostMu.Lock()
	defer hostMu.Unlock()
	if hostDev == nil {
		return nil
	}
	err := hostDev.Stop()
	hostDev = nil
	return NormalizeError(err)
}
