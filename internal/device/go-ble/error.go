package goble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/srg/hoodctl/internal/device"
)

// errorPatterns maps go-ble error text to the connection states hoodctl reports. go-ble
// returns plain wrapped strings on both stacks, so matching is by substring. Order
// matters: the HCI bind failure also mentions the device.
var errorPatterns = []struct {
	substr string
	target error
}{
	// darwin: CoreBluetooth powered off or unauthorized
	{"is Bluetooth turned on", device.ErrBluetoothOff},
	{"bluetooth is turned off", device.ErrBluetoothOff},
	// linux: opening the HCI user channel
	{"device or resource busy", device.ErrAdapterBusy},
	{"operation not permitted", device.ErrNoPermission},
	{"permission denied", device.ErrNoPermission},
	{"can't get device list", device.ErrBluetoothOff},
	{"no such device", device.ErrBluetoothOff},
	// GATT session state
	{"device not connected", device.ErrNotConnected},
	{"disconnected", device.ErrNotConnected},
	{"device already connected", device.ErrAlreadyConnected},
	{"connection is not initialized", device.ErrNotInitialized},
}

// NormalizeError wraps go-ble errors in the device error states, keeping the original
// message. Unknown errors are returned unchanged.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", device.ErrTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(msg, strings.ToLower(p.substr)) {
			return fmt.Errorf("%w: %v", p.target, err)
		}
	}
	return err
}
