package goble

import (
	"context"

	ble "github.com/go-ble/ble"
	"github.com/srg/hoodctl/internal/device"
)

// bleScanner wraps ble.Device to implement the device.ScanningDevice interface
type bleScanner struct {
	dev ble.Device
}

// Scan wraps the raw ble.Device.Scan to convert ble.Advertisement to the device.Advertisement
func (s *bleScanner) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	bleHandler := func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	}
	err := s.dev.Scan(ctx, allowDup, bleHandler)
	if err != nil {
		return NormalizeError(err)
	}
	return nil
}

// NewScanner scans on the shared host device, so a scan never competes with the
// transport for the adapter.
func NewScanner() (device.ScanningDevice, error) {
	dev, err := HostDevice()
	if err != nil {
		return nil, err
	}
	return &bleScanner{dev: dev}, nil
}
