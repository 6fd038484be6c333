// Package devicefactory is where hosts get their radio. Both factories are variables
// so tests can swap in fakes without touching the go-ble adapter.
package devicefactory

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/device"
	goble "github.com/srg/hoodctl/internal/device/go-ble"
)

// TransportOptions are the radio timeouts a transport is built with.
type TransportOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DeviceFactory creates a device.ScanningDevice for BLE scanning operations.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = func() (device.ScanningDevice, error) {
	return goble.NewScanner()
}

// ReleaseDevice stops the radio DeviceFactory and TransportFactory share. Hosts call it
// once they are done with both.
var ReleaseDevice = func() error {
	return goble.ReleaseHostDevice()
}

// TransportFactory creates the device.Transport GATT sessions are opened with.
var TransportFactory = func(logger *logrus.Logger, opts TransportOptions) device.Transport {
	return goble.NewTransport(logger,
		goble.WithConnectTimeout(opts.ConnectTimeout),
		goble.WithReadTimeout(opts.ReadTimeout),
	)
}
