package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/srg/hoodctl/internal/device"
)

// FakeWrite records one characteristic write.
type FakeWrite struct {
	Address      string
	UUID         string // normalized
	Data         []byte
	WithResponse bool
}

// FakeTransport is an in-memory device.Transport. Every session shares one
// characteristic store, so a write is visible to later reads like on real hardware.
// Errors are scripted per call: FailReads(nil, err) lets the first read pass and
// fails the second.
type FakeTransport struct {
	mu sync.Mutex

	values   map[string][]byte
	services []string
	latency  time.Duration

	connectErrs []error
	readErrs    []error
	writeErrs   []error
	disconnErrs []error

	connects int
	reads    int
	sessions []*FakeSession
	writes   []FakeWrite

	inFlight    int
	maxInFlight int
}

// NewFakeTransport creates an empty transport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{values: make(map[string][]byte)}
}

// WithValue sets the value returned for uuid.
func (t *FakeTransport) WithValue(uuid string, data []byte) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[device.NormalizeUUID(uuid)] = append([]byte(nil), data...)
	return t
}

// WithServices sets what Session.ServiceUUIDs reports.
func (t *FakeTransport) WithServices(uuids ...string) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.services = device.NormalizeUUIDs(uuids)
	return t
}

// WithLatency makes each read and write take d.
func (t *FakeTransport) WithLatency(d time.Duration) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latency = d
	return t
}

func (t *FakeTransport) FailConnect(errs ...error) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectErrs = append(t.connectErrs, errs...)
	return t
}

func (t *FakeTransport) FailReads(errs ...error) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErrs = append(t.readErrs, errs...)
	return t
}

func (t *FakeTransport) FailWrites(errs ...error) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErrs = append(t.writeErrs, errs...)
	return t
}

func (t *FakeTransport) FailDisconnects(errs ...error) *FakeTransport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnErrs = append(t.disconnErrs, errs...)
	return t
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

// Connect implements device.Transport.
func (t *FakeTransport) Connect(ctx context.Context, peer device.Peer) (device.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connects++
	if err := pop(&t.connectErrs); err != nil {
		return nil, err
	}
	s := &FakeSession{transport: t, address: peer.Address(), connected: true}
	t.sessions = append(t.sessions, s)
	return s, nil
}

// Connects is the number of Connect calls, failed ones included.
func (t *FakeTransport) Connects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects
}

// Reads is the number of ReadCharacteristic calls.
func (t *FakeTransport) Reads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

// Calls counts every interaction with the radio: connects, reads and writes.
func (t *FakeTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects + t.reads + len(t.writes)
}

// Sessions returns every session handed out, in order.
func (t *FakeTransport) Sessions() []*FakeSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*FakeSession(nil), t.sessions...)
}

// Writes returns every successful write, in order.
func (t *FakeTransport) Writes() []FakeWrite {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]FakeWrite(nil), t.writes...)
}

// Value returns the stored value of uuid.
func (t *FakeTransport) Value(uuid string) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.values[device.NormalizeUUID(uuid)]...)
}

// MaxInFlight is the highest number of reads/writes ever running at once.
func (t *FakeTransport) MaxInFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxInFlight
}

func (t *FakeTransport) enter() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight++
	if t.inFlight > t.maxInFlight {
		t.maxInFlight = t.inFlight
	}
	return t.latency
}

func (t *FakeTransport) leave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight--
}

// FakeSession is the device.Session handed out by FakeTransport.
type FakeSession struct {
	transport   *FakeTransport
	address     string
	connected   bool
	disconnects int
}

func (s *FakeSession) Address() string { return s.address }

func (s *FakeSession) ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error) {
	if d := s.transport.enter(); d > 0 {
		time.Sleep(d)
	}
	defer s.transport.leave()

	t := s.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reads++
	if !s.connected {
		return nil, &device.TransportError{Op: "read", Address: s.address, UUID: uuid, Err: device.ErrNotConnected}
	}
	if err := pop(&t.readErrs); err != nil {
		return nil, asTransportError("read", s.address, uuid, err)
	}
	v, ok := t.values[device.NormalizeUUID(uuid)]
	if !ok {
		return nil, &device.TransportError{Op: "read", Address: s.address, UUID: uuid,
			Err: &device.NotFoundError{Resource: "characteristic", UUIDs: []string{uuid}}}
	}
	return append([]byte(nil), v...), nil
}

func (s *FakeSession) WriteCharacteristic(ctx context.Context, uuid string, data []byte, withResponse bool) error {
	if d := s.transport.enter(); d > 0 {
		time.Sleep(d)
	}
	defer s.transport.leave()

	t := s.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.connected {
		return &device.TransportError{Op: "write", Address: s.address, UUID: uuid, Err: device.ErrNotConnected}
	}
	if err := pop(&t.writeErrs); err != nil {
		return asTransportError("write", s.address, uuid, err)
	}
	n := device.NormalizeUUID(uuid)
	t.values[n] = append([]byte(nil), data...)
	t.writes = append(t.writes, FakeWrite{Address: s.address, UUID: n, Data: append([]byte(nil), data...), WithResponse: withResponse})
	return nil
}

func (s *FakeSession) ServiceUUIDs() []string {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	return append([]string(nil), s.transport.services...)
}

func (s *FakeSession) Connected() bool {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	return s.connected
}

// Drop simulates the peer going away without a local Disconnect.
func (s *FakeSession) Drop() {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	s.connected = false
}

func (s *FakeSession) Disconnect() error {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	s.disconnects++
	s.connected = false
	return pop(&s.transport.disconnErrs)
}

// Disconnects is how many times Disconnect was called on this session.
func (s *FakeSession) Disconnects() int {
	s.transport.mu.Lock()
	defer s.transport.mu.Unlock()
	return s.disconnects
}

func asTransportError(op, address, uuid string, err error) error {
	var terr *device.TransportError
	if errors.As(err, &terr) {
		return err
	}
	return &device.TransportError{Op: op, Address: address, UUID: uuid, Err: err}
}
