package goble

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"bluetooth off darwin", errors.New("central manager has invalid state: have=4 want=5: is Bluetooth turned on?"), device.ErrBluetoothOff},
		{"bluetooth off", errors.New("Bluetooth is turned off"), device.ErrBluetoothOff},
		{"not connected", errors.New("device not connected"), device.ErrNotConnected},
		{"disconnected", errors.New("peer disconnected"), device.ErrNotConnected},
		{"already connected", errors.New("device already connected"), device.ErrAlreadyConnected},
		{"not initialized", errors.New("connection is not initialized"), device.ErrNotInitialized},
		{"hci channel taken", errors.New("can't init hci: can't create socket: can't bind socket to hci user channel: device or resource busy"), device.ErrAdapterBusy},
		{"hci not permitted", errors.New("can't init hci: can't create socket: operation not permitted"), device.ErrNoPermission},
		{"no adapter", errors.New("can't init hci: can't create socket: can't get device list: no such device"), device.ErrBluetoothOff},
		{"deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), device.ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error(), "original message MUST be preserved")
		})
	}
}

func TestNormalizeError_Passthrough(t *testing.T) {
	assert.NoError(t, NormalizeError(nil))

	orig := errors.New("att: insufficient authentication")
	assert.Same(t, orig, NormalizeError(orig), "unknown errors MUST pass through unchanged")
}

func TestBLEAdvertisement(t *testing.T) {
	adv := NewBLEAdvertisement(testutils.NewAdvertisementBuilder().
		WithName("SKE Skyline").
		WithAddress("aa:bb:cc:dd:ee:01").
		WithRSSI(-48).
		WithServices(testServiceUUID, "180F").
		WithSolicitedServices("0000FFE0-0000-1000-8000-00805F9B34FB").
		WithManufacturerData(0x0499, []byte{0x01, 0x02}).
		Build())

	assert.Equal(t, "SKE Skyline", adv.LocalName())
	assert.Equal(t, "aa:bb:cc:dd:ee:01", adv.Addr())
	assert.Equal(t, -48, adv.RSSI())
	assert.True(t, adv.Connectable())
	assert.Equal(t, []byte{0x01, 0x02}, adv.ManufacturerData(), "company identifier MUST be stripped")
	assert.Equal(t, []string{device.NormalizeUUID(testServiceUUID), "180f", "ffe0"}, adv.Services(),
		"services MUST be normalized and include solicited ones")

	unwrapped, ok := adv.(*BLEAdvertisement)
	require.True(t, ok)
	assert.NotNil(t, unwrapped.Unwrap())
	id, ok := unwrapped.CompanyID()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0499), id)
}

func TestBLEAdvertisement_ManufacturerDataWithoutPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"absent", nil},
		{"truncated company id", []byte{0x99}},
		{"company id only", []byte{0x99, 0x04}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutils.NewAdvertisementBuilder().Build()
			raw.Manufacturer = tt.raw
			assert.Nil(t, NewBLEAdvertisement(raw).ManufacturerData())
		})
	}
}
