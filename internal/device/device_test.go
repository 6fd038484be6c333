package device_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/srg/hoodctl/internal/device"
	"github.com/stretchr/testify/suite"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func (suite *ErrorsTestSuite) TestConnectionError_IsMatchesByState() {
	// GOAL: Verify wrapped connection errors are recognized by their state sentinel
	//
	// TEST SCENARIO: Wrap a state error twice → errors.Is against sentinel → match on state only

	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", &device.ConnectionError{State: device.NotConnected, Msg: "link lost"}))

	suite.ErrorIs(err, device.ErrNotConnected, "wrapped NotConnected MUST match sentinel")
	suite.NotErrorIs(err, device.ErrAlreadyConnected, "different state MUST NOT match")
	suite.True(device.IsConnectionState(err, device.NotConnected))
	suite.False(device.IsConnectionState(errors.New("plain"), device.NotConnected))
}

func (suite *ErrorsTestSuite) TestConnectionError_Message() {
	suite.Equal("not_connected", device.ErrNotConnected.Error())
	suite.Equal("bluetooth_off: is Bluetooth turned on?", device.ErrBluetoothOff.Error())

	var nilErr *device.ConnectionError
	suite.Equal("<nil>", nilErr.Error())
	suite.False(nilErr.Is(device.ErrNotConnected))
}

func (suite *ErrorsTestSuite) TestTransportError() {
	// GOAL: Verify TransportError carries context and keeps the cause reachable
	//
	// TEST SCENARIO: Build read failure → message includes op, uuid, address → cause unwraps

	cause := fmt.Errorf("%w: gatt read failed", device.ErrNotConnected)
	err := error(&device.TransportError{Op: "read", Address: "AA:BB", UUID: "ffe1", Err: cause})

	suite.Equal("read ffe1 on AA:BB: not_connected: gatt read failed", err.Error())
	suite.True(device.IsTransportError(err))
	suite.True(device.IsTransportError(fmt.Errorf("attempt 2: %w", err)), "wrapped TransportError MUST be detected")
	suite.ErrorIs(err, device.ErrNotConnected, "cause MUST stay reachable through Unwrap")
	suite.False(device.IsTransportError(cause))

	suite.Equal("connect", (&device.TransportError{Op: "connect"}).Error())
}

func (suite *ErrorsTestSuite) TestNotFoundError() {
	suite.Equal("service not found", (&device.NotFoundError{Resource: "service"}).Error())
	suite.Equal(`service "ffe0" not found`, (&device.NotFoundError{Resource: "service", UUIDs: []string{"ffe0"}}).Error())
	suite.Equal(`characteristic "ffe1" not found in service "ffe0"`,
		(&device.NotFoundError{Resource: "characteristic", UUIDs: []string{"ffe0", "ffe1"}}).Error())
}

func (suite *ErrorsTestSuite) TestPeerFromAdvertisement_Copies() {
	adv := &fakeAdvertisement{name: "HOOD_PER 42", addr: "11:22", services: []string{"ffe0"}, md: []byte{1, 2}}

	peer := device.PeerFromAdvertisement(adv)
	adv.md[0] = 9
	adv.services[0] = "changed"

	suite.Equal("HOOD_PER 42", peer.Name())
	suite.Equal("11:22", peer.Address())
	suite.Equal([]string{"ffe0"}, peer.AdvertisedServices(), "services MUST be snapshotted")
	suite.Equal([]byte{1, 2}, peer.ManufacturerData(), "manufacturer data MUST be snapshotted")
}

type fakeAdvertisement struct {
	name     string
	addr     string
	services []string
	md       []byte
}

func (a *fakeAdvertisement) LocalName() string        { return a.name }
func (a *fakeAdvertisement) ManufacturerData() []byte { return a.md }
func (a *fakeAdvertisement) Services() []string       { return a.services }
func (a *fakeAdvertisement) Connectable() bool        { return true }
func (a *fakeAdvertisement) RSSI() int                { return -60 }
func (a *fakeAdvertisement) Addr() string             { return a.addr }

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
