// Package connmgr pools a single GATT session per hood and serializes all I/O on it.
package connmgr

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/device"
)

// DefaultIdleTimeout is how long an unused session stays open.
const DefaultIdleTimeout = 20 * time.Second

// State of the pooled session.
type State int

const (
	Disconnected State = iota
	Connected
	// PendingTeardown means the idle timer fired and the close is waiting for the operation lock.
	PendingTeardown
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case PendingTeardown:
		return "pending_teardown"
	default:
		return "unknown"
	}
}

type handle struct {
	session device.Session
	address string
	timer   *time.Timer
	gen     uint64
	pending bool
}

// Manager owns at most one session. All work on it goes through Do, which holds the
// operation lock for the whole connect + read/write sequence.
type Manager struct {
	transport device.Transport
	logger    *logrus.Logger
	idle      time.Duration

	opMu sync.Mutex // serializes every transport operation

	stateMu sync.Mutex // guards h and gen; the idle callback takes it without opMu
	h       *handle
	gen     uint64
}

// Option configures a Manager.
type Option func(*Manager)

func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idle = d
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a manager that opens sessions through transport.
func New(transport device.Transport, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		logger:    logrus.New(),
		idle:      DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do runs fn with a live session to peer. A transport error returned by fn closes the
// session before Do returns, so the next call reconnects.
func (m *Manager) Do(ctx context.Context, peer device.Peer, fn func(device.Session) error) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := m.acquire(ctx, peer)
	if err != nil {
		return err
	}

	err = fn(session)
	if err != nil && device.IsTransportError(err) {
		m.logger.WithFields(logrus.Fields{
			"address": peer.Address(),
			"error":   err,
		}).Debug("Transport error, dropping session")
		m.drop(reasonTransport)
		return err
	}

	m.touch()
	return err
}

// acquire returns the pooled session for peer, reconnecting when needed. opMu must be held.
func (m *Manager) acquire(ctx context.Context, peer device.Peer) (device.Session, error) {
	address := peer.Address()

	m.stateMu.Lock()
	h := m.h
	if h != nil && h.address == address && h.session.Connected() {
		if h.pending {
			m.logger.WithField("address", address).Debug("Idle teardown cancelled, reusing session")
		}
		m.armLocked(h)
		m.stateMu.Unlock()
		connectionsReused.Inc()
		return h.session, nil
	}
	m.h = nil
	m.stateMu.Unlock()

	if h != nil {
		h.timer.Stop()
		reason := reasonSwitch
		if h.address == address {
			reason = reasonStale
		}
		m.teardown(h, reason)
	}

	m.logger.WithField("address", address).Debug("Opening session...")
	session, err := m.transport.Connect(ctx, peer)
	if err != nil {
		var terr *device.TransportError
		if !errors.As(err, &terr) {
			err = &device.TransportError{Op: "connect", Address: address, Err: err}
		}
		m.logger.WithFields(logrus.Fields{
			"address": address,
			"error":   err,
		}).Debug("Failed to open session")
		return nil, err
	}

	h = &handle{session: session, address: address}
	m.stateMu.Lock()
	m.h = h
	m.armLocked(h)
	m.stateMu.Unlock()
	connectionsOpened.Inc()

	m.logger.WithFields(logrus.Fields{
		"address": address,
		"idle":    m.idle,
	}).Info("Session opened")
	return session, nil
}

// armLocked (re)starts the idle timer under a new generation. stateMu must be held.
func (m *Manager) armLocked(h *handle) {
	m.gen++
	gen := m.gen
	h.gen = gen
	h.pending = false
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(m.idle, func() { m.onIdle(gen) })
}

// touch restarts the idle window after an operation finished.
func (m *Manager) touch() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.h != nil {
		m.armLocked(m.h)
	}
}

// onIdle runs on the timer goroutine. It marks the session pending, waits for the
// operation lock and closes only if nobody reused the session meanwhile.
func (m *Manager) onIdle(gen uint64) {
	m.stateMu.Lock()
	if m.h == nil || m.h.gen != gen {
		m.stateMu.Unlock()
		return
	}
	m.h.pending = true
	m.stateMu.Unlock()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.stateMu.Lock()
	h := m.h
	if h == nil || h.gen != gen || !h.pending {
		m.stateMu.Unlock()
		return
	}
	m.h = nil
	m.stateMu.Unlock()

	m.logger.WithField("address", h.address).Debug("Idle window elapsed")
	m.teardown(h, reasonIdle)
}

// drop closes the current session. opMu must be held.
func (m *Manager) drop(reason string) {
	m.stateMu.Lock()
	h := m.h
	m.h = nil
	m.stateMu.Unlock()

	if h == nil {
		return
	}
	h.timer.Stop()
	m.teardown(h, reason)
}

// teardown is best effort: errors are logged and swallowed.
func (m *Manager) teardown(h *handle, reason string) {
	if err := h.session.Disconnect(); err != nil {
		m.logger.WithFields(logrus.Fields{
			"address": h.address,
			"reason":  reason,
			"error":   err,
		}).Debug("Session teardown failed")
	} else {
		m.logger.WithFields(logrus.Fields{
			"address": h.address,
			"reason":  reason,
		}).Info("Session closed")
	}
	connectionsClosed.WithLabelValues(reason).Inc()
}

// Disconnect cancels the idle timer and closes the session. Safe to call repeatedly.
func (m *Manager) Disconnect() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.drop(reasonExplicit)
	return nil
}

// Close is Disconnect under the name shutdown code expects.
func (m *Manager) Close() error {
	return m.Disconnect()
}

// State reports the pool state.
func (m *Manager) State() State {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	switch {
	case m.h == nil:
		return Disconnected
	case m.h.pending:
		return PendingTeardown
	default:
		return Connected
	}
}

// Address is the peer of the pooled session, "" when disconnected.
func (m *Manager) Address() string {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.h == nil {
		return ""
	}
	return m.h.address
}
