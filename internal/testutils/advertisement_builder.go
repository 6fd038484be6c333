package testutils

import (
	"fmt"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux/adv"
)

// FakeAdvertisement is a ble.Advertisement with fixed values.
type FakeAdvertisement struct {
	Name          string
	Address       string
	RSSIValue     int
	ServiceUUIDs  []ble.UUID
	Solicited     []ble.UUID
	Manufacturer  []byte
	TxPower       int
	IsConnectable bool
}

func (a *FakeAdvertisement) LocalName() string              { return a.Name }
func (a *FakeAdvertisement) ManufacturerData() []byte       { return a.Manufacturer }
func (a *FakeAdvertisement) ServiceData() []ble.ServiceData { return nil }
func (a *FakeAdvertisement) Services() []ble.UUID           { return a.ServiceUUIDs }
func (a *FakeAdvertisement) OverflowService() []ble.UUID    { return nil }
func (a *FakeAdvertisement) TxPowerLevel() int              { return a.TxPower }
func (a *FakeAdvertisement) Connectable() bool              { return a.IsConnectable }
func (a *FakeAdvertisement) SolicitedService() []ble.UUID   { return a.Solicited }
func (a *FakeAdvertisement) RSSI() int                      { return a.RSSIValue }
func (a *FakeAdvertisement) Addr() ble.Addr                 { return ble.NewAddr(a.Address) }

// AdvertisementBuilder builds fake BLE advertisements for testing with a fluent API.
//
//	adv := NewAdvertisementBuilder().
//	    WithName("SKE Skyline").
//	    WithAddress(TestModernAddress).
//	    WithServices(hood.ServiceUUID).
//	    Build()
type AdvertisementBuilder struct {
	adv FakeAdvertisement
}

// NewAdvertisementBuilder starts a connectable advertisement with RSSI -60 and
// TxPower 127, the "unavailable" value.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{adv: FakeAdvertisement{
		RSSIValue:     -60,
		TxPower:       127,
		IsConnectable: true,
	}}
}

func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.adv.Name = name
	return b
}

func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.adv.Address = addr
	return b
}

func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.adv.RSSIValue = rssi
	return b
}

// WithServices adds advertised service UUIDs in any form ble.Parse accepts.
func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	for _, u := range uuids {
		b.adv.ServiceUUIDs = append(b.adv.ServiceUUIDs, ble.MustParse(u))
	}
	return b
}

// WithSolicitedServices adds solicited service UUIDs.
func (b *AdvertisementBuilder) WithSolicitedServices(uuids ...string) *AdvertisementBuilder {
	for _, u := range uuids {
		b.adv.Solicited = append(b.adv.Solicited, ble.MustParse(u))
	}
	return b
}

// WithManufacturerData sets the manufacturer field the way go-ble reports it: the
// company identifier, little-endian, followed by payload.
func (b *AdvertisementBuilder) WithManufacturerData(companyID uint16, payload []byte) *AdvertisementBuilder {
	p, err := adv.NewPacket(adv.ManufacturerData(companyID, payload))
	if err != nil {
		panic(fmt.Sprintf("manufacturer data does not fit an advertising packet: %v", err))
	}
	b.adv.Manufacturer = append([]byte(nil), p.ManufacturerData()...)
	return b
}

func (b *AdvertisementBuilder) WithConnectable(c bool) *AdvertisementBuilder {
	b.adv.IsConnectable = c
	return b
}

// Build returns a copy, so one builder can produce several advertisements.
func (b *AdvertisementBuilder) Build() *FakeAdvertisement {
	adv := b.adv
	return &adv
}
