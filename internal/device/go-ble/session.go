package goble

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/device"
)

// Session is one live GATT connection. Characteristics are looked up by normalized
// UUID in the profile discovered on connect.
type Session struct {
	client      ble.Client
	address     string
	readTimeout time.Duration
	logger      *logrus.Logger

	chars    map[string]*ble.Characteristic
	services []string

	connected atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

func newSession(client ble.Client, address string, profile *ble.Profile, readTimeout time.Duration, logger *logrus.Logger) *Session {
	s := &Session{
		client:      client,
		address:     address,
		readTimeout: readTimeout,
		logger:      logger,
		chars:       make(map[string]*ble.Characteristic),
		done:        make(chan struct{}),
	}
	for _, svc := range profile.Services {
		s.services = append(s.services, device.NormalizeUUID(svc.UUID.String()))
		for _, c := range svc.Characteristics {
			s.chars[device.NormalizeUUID(c.UUID.String())] = c
		}
	}
	sort.Strings(s.services)
	s.connected.Store(true)
	return s
}

func (s *Session) Address() string { return s.address }

func (s *Session) ServiceUUIDs() []string {
	return append([]string(nil), s.services...)
}

func (s *Session) Connected() bool { return s.connected.Load() }

func (s *Session) markDropped() { s.connected.Store(false) }

func (s *Session) characteristic(op, uuid string) (*ble.Characteristic, error) {
	if !s.Connected() {
		return nil, &device.TransportError{Op: op, Address: s.address, UUID: uuid, Err: device.ErrNotConnected}
	}
	c, ok := s.chars[device.NormalizeUUID(uuid)]
	if !ok {
		return nil, &device.TransportError{Op: op, Address: s.address, UUID: uuid,
			Err: &device.NotFoundError{Resource: "characteristic", UUIDs: []string{uuid}}}
	}
	return c, nil
}

// ReadCharacteristic reads with the session's read timeout so an unresponsive peer
// cannot block the caller indefinitely.
func (s *Session) ReadCharacteristic(ctx context.Context, uuid string) ([]byte, error) {
	c, err := s.characteristic("read", uuid)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = s.withTimeout(ctx, func() error {
		var err error
		data, err = s.client.ReadCharacteristic(c)
		return err
	})
	if err != nil {
		return nil, &device.TransportError{Op: "read", Address: s.address, UUID: uuid, Err: err}
	}
	return data, nil
}

func (s *Session) WriteCharacteristic(ctx context.Context, uuid string, data []byte, withResponse bool) error {
	c, err := s.characteristic("write", uuid)
	if err != nil {
		return err
	}

	err = s.withTimeout(ctx, func() error {
		return s.client.WriteCharacteristic(c, data, !withResponse)
	})
	if err != nil {
		return &device.TransportError{Op: "write", Address: s.address, UUID: uuid, Err: err}
	}
	return nil
}

// withTimeout runs fn in its own goroutine; go-ble calls take no context.
func (s *Session) withTimeout(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	go func() {
		result <- fn()
	}()

	timer := time.NewTimer(s.readTimeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return NormalizeError(err)
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %v", device.ErrTimeout, s.readTimeout)
	}
}

// Disconnect cancels the connection. Only the first call reaches the radio.
func (s *Session) Disconnect() error {
	var err error
	s.closeOnce.Do(func() {
		s.connected.Store(false)
		close(s.done)
		s.logger.WithField("address", s.address).Debug("Disconnecting BLE device...")
		err = NormalizeError(s.client.CancelConnection())
	})
	return err
}
