package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/hood"
)

// FormatUserError turns an error chain into one line a user can act on. Errors that
// are not recognised print unchanged.
func FormatUserError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is off or not available; turn it on and try again"
	case errors.Is(err, device.ErrAdapterBusy):
		return "the Bluetooth adapter is in use by another program; stop it (e.g. bluetoothd) and try again"
	case errors.Is(err, device.ErrNoPermission):
		return "no permission to use the Bluetooth adapter; run as root or grant CAP_NET_ADMIN and CAP_NET_RAW"
	case errors.Is(err, device.ErrPeerNotFound):
		return fmt.Sprintf("hood not found; make sure it is powered and in range (%v)", err)
	case errors.Is(err, hood.ErrInvalidArgument):
		return err.Error()
	case errors.Is(err, hood.ErrUnsupported):
		return fmt.Sprintf("this hood's firmware does not support the operation (%v)", err)
	case errors.Is(err, hood.ErrMalformedFrame):
		return fmt.Sprintf("the hood sent data that could not be decoded (%v)", err)
	case errors.Is(err, device.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("the hood did not answer in time (%v)", err)
	case device.IsTransportError(err):
		return fmt.Sprintf("connection to the hood failed (%v)", err)
	default:
		return err.Error()
	}
}
