package goble

import (
	"encoding/binary"

	"github.com/go-ble/ble"
	"github.com/srg/hoodctl/internal/device"
)

// BLEAdvertisement wraps ble.Advertisement to implement device.Advertisement interface
type BLEAdvertisement struct {
	adv ble.Advertisement
}

// NewBLEAdvertisement creates a new BLEAdvertisement wrapper
func NewBLEAdvertisement(adv ble.Advertisement) device.Advertisement {
	return &BLEAdvertisement{adv: adv}
}

func (a *BLEAdvertisement) LocalName() string { return a.adv.LocalName() }
func (a *BLEAdvertisement) Connectable() bool { return a.adv.Connectable() }
func (a *BLEAdvertisement) RSSI() int         { return a.adv.RSSI() }

// companyIDLen is the little-endian company identifier go-ble leaves in front of the
// manufacturer payload on both linux and darwin.
const companyIDLen = 2

// ManufacturerData returns the manufacturer payload after the company identifier, or nil
// when the field is absent or too short to carry one.
func (a *BLEAdvertisement) ManufacturerData() []byte {
	md := a.adv.ManufacturerData()
	if len(md) <= companyIDLen {
		return nil
	}
	return md[companyIDLen:]
}

// CompanyID returns the Bluetooth SIG company identifier of the manufacturer data.
func (a *BLEAdvertisement) CompanyID() (uint16, bool) {
	md := a.adv.ManufacturerData()
	if len(md) < companyIDLen {
		return 0, false
	}
	return binary.LittleEndian.Uint16(md), true
}

func (a *BLEAdvertisement) Addr() string {
	if addr := a.adv.Addr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Services returns the advertised service UUIDs, normalized. Solicited and overflow
// services are included since some hoods only list their service there.
func (a *BLEAdvertisement) Services() []string {
	var raw []string
	for _, list := range [][]ble.UUID{a.adv.Services(), a.adv.OverflowService(), a.adv.SolicitedService()} {
		for _, u := range list {
			raw = append(raw, u.String())
		}
	}
	return device.NormalizeUUIDs(raw)
}

// Unwrap returns the underlying ble.Advertisement for internal use within go-ble package
func (a *BLEAdvertisement) Unwrap() ble.Advertisement {
	return a.adv
}
