package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents an error when a GATT resource is not found
type NotFoundError struct {
	Resource string   // "service", "characteristic"
	UUIDs    []string // One or more UUIDs (e.g., [serviceUUID] or [serviceUUID, charUUID])
}

func (e *NotFoundError) Error() string {
	if len(e.UUIDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	if len(e.UUIDs) == 1 {
		return fmt.Sprintf("%s %q not found", e.Resource, e.UUIDs[0])
	}
	return fmt.Sprintf("%s %q not found in service %q", e.Resource, e.UUIDs[len(e.UUIDs)-1], e.UUIDs[0])
}

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
	NotInitialized   ConnectionState = "not_initialized"
	BluetoothOff     ConnectionState = "bluetooth_off"
	// AdapterBusy means another process holds the local adapter.
	AdapterBusy ConnectionState = "adapter_busy"
	// NoPermission means the process may not open the local adapter.
	NoPermission ConnectionState = "no_permission"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
	ErrNotInitialized   = &ConnectionError{State: NotInitialized}
	ErrBluetoothOff     = &ConnectionError{State: BluetoothOff, Msg: "is Bluetooth turned on?"}
	ErrAdapterBusy      = &ConnectionError{State: AdapterBusy, Msg: "is another Bluetooth program running?"}
	ErrNoPermission     = &ConnectionError{State: NoPermission, Msg: "raw HCI access needs CAP_NET_ADMIN and CAP_NET_RAW"}
)

// Operation errors
var (
	ErrTimeout      = errors.New("timeout")
	ErrPeerNotFound = errors.New("peer not found")
)

// IsConnectionState reports whether err is a ConnectionError with the given state
func IsConnectionState(err error, state ConnectionState) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == state
	}
	return false
}

// TransportError marks a failure of the radio link: connect, GATT read/write, or a
// dropped session. Everything wrapped in it is treated as "the session is unusable".
type TransportError struct {
	Op      string // "connect", "read", "write", "discover"
	Address string
	UUID    string
	Err     error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.UUID != "" {
		fmt.Fprintf(&b, " %s", e.UUID)
	}
	if e.Address != "" {
		fmt.Fprintf(&b, " on %s", e.Address)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err (or anything it wraps) is a *TransportError.
func IsTransportError(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr)
}

// Peer identifies a discovered device: what its advertisement told us, nothing more.
type Peer interface {
	Name() string
	Address() string
	AdvertisedServices() []string
	ManufacturerData() []byte
}

// Session is a live GATT link to one peer. Characteristic UUIDs may be passed in any
// textual form accepted by NormalizeUUID.
type Session interface {
	Address() string
	ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error)
	WriteCharacteristic(ctx context.Context, uuid string, data []byte, withResponse bool) error
	// ServiceUUIDs lists the normalized UUIDs of the services discovered on connect.
	ServiceUUIDs() []string
	Connected() bool
	Disconnect() error
}

// Transport opens sessions.
type Transport interface {
	Connect(ctx context.Context, peer Peer) (Session, error)
}

// Resolver turns an address into a Peer, usually by scanning for its advertisement.
type Resolver interface {
	Resolve(ctx context.Context, address string) (Peer, error)
}

// ScanningDevice represents a BLE device capable of scanning for advertisements
type ScanningDevice interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
}

// Advertisement is the radio-neutral view of one advertising packet.
type Advertisement interface {
	LocalName() string
	// ManufacturerData is the manufacturer payload without the 2-byte company identifier.
	ManufacturerData() []byte
	Services() []string
	Connectable() bool
	RSSI() int
	Addr() string
}

// StaticPeer is a Peer assembled from known values; handy for hosts that already hold
// the advertisement fields and for tests.
type StaticPeer struct {
	PeerName     string
	PeerAddress  string
	Services     []string
	Manufacturer []byte
}

func (p *StaticPeer) Name() string                 { return p.PeerName }
func (p *StaticPeer) Address() string              { return p.PeerAddress }
func (p *StaticPeer) AdvertisedServices() []string { return p.Services }
func (p *StaticPeer) ManufacturerData() []byte     { return p.Manufacturer }

// PeerFromAdvertisement snapshots an advertisement into a StaticPeer.
func PeerFromAdvertisement(adv Advertisement) *StaticPeer {
	md := adv.ManufacturerData()
	return &StaticPeer{
		PeerName:     adv.LocalName(),
		PeerAddress:  adv.Addr(),
		Services:     append([]string(nil), adv.Services()...),
		Manufacturer: append([]byte(nil), md...),
	}
}
