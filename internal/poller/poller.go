// Package poller keeps a hood's status fresh on a fixed interval.
//
// A single failed poll is not visible to readers: the last good status stays
// available until a circuit breaker has seen enough consecutive failures to open.
// While open, the hood is reported unavailable and the next poll is the probe.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/groutine"
	"github.com/srg/hoodctl/internal/hood"
)

const (
	DefaultInterval         = 18 * time.Second
	DefaultFailureThreshold = 3
)

// Updater reads a hood's status. *client.Client implements it.
type Updater interface {
	UpdateDevice(ctx context.Context, peer device.Peer) (hood.Status, error)
}

// UpdateFunc is called after every poll with the status readers would see.
type UpdateFunc func(st hood.Status, available bool, err error)

type Poller struct {
	updater  Updater
	peer     device.Peer
	logger   *logrus.Logger
	interval time.Duration
	onUpdate UpdateFunc

	failureThreshold uint32
	breaker          *gobreaker.CircuitBreaker[hood.Status]

	mu     sync.RWMutex
	latest hood.Status
	have   bool
}

type Option func(*Poller)

func WithLogger(logger *logrus.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithFailureThreshold is how many consecutive failures make the hood unavailable.
func WithFailureThreshold(n uint32) Option {
	return func(p *Poller) {
		if n > 0 {
			p.failureThreshold = n
		}
	}
}

func WithOnUpdate(fn UpdateFunc) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// New creates a poller for one hood.
func New(updater Updater, peer device.Peer, opts ...Option) *Poller {
	p := &Poller{
		updater:          updater,
		peer:             peer,
		logger:           logrus.New(),
		interval:         DefaultInterval,
		failureThreshold: DefaultFailureThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.breaker = p.newBreaker()
	return p
}

func (p *Poller) newBreaker() *gobreaker.CircuitBreaker[hood.Status] {
	n := p.failureThreshold
	return gobreaker.NewCircuitBreaker[hood.Status](gobreaker.Settings{
		Name:        "hood:" + p.peer.Address(),
		MaxRequests: 1,
		// Open lasts less than one interval, so every tick while open is a probe.
		Timeout: p.interval / 2,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= n
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Hood availability changed")
		},
		IsSuccessful: func(err error) bool {
			// Shutting down is not the hood's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Poll runs one status update now.
func (p *Poller) Poll(ctx context.Context) (hood.Status, error) {
	address := p.peer.Address()
	log := p.logger.WithField("address", address)

	st, err := p.breaker.Execute(func() (hood.Status, error) {
		return p.updater.UpdateDevice(ctx, p.peer)
	})

	switch {
	case err == nil:
		p.mu.Lock()
		p.latest, p.have = st, true
		p.mu.Unlock()

		pollsTotal.WithLabelValues(address, resultSuccess).Inc()
		hoodFanLevel.WithLabelValues(address).Set(float64(st.FanLevel))
		hoodLightOn.WithLabelValues(address, "top").Set(boolGauge(st.LightTopOn))
		hoodLightOn.WithLabelValues(address, "bottom").Set(boolGauge(st.LightBottomOn))
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		pollsTotal.WithLabelValues(address, resultRejected).Inc()
		log.Debug("Poll skipped, breaker open")
	default:
		pollsTotal.WithLabelValues(address, resultFailure).Inc()
		log.WithFields(logrus.Fields{
			"consecutive_failures": p.breaker.Counts().ConsecutiveFailures,
			"error":                err,
		}).Warn("Poll failed")
	}

	last, available := p.Latest()
	hoodAvailable.WithLabelValues(address).Set(boolGauge(available))
	if p.onUpdate != nil {
		p.onUpdate(last, available, err)
	}
	return last, err
}

// Refresh polls immediately, typically right after a command.
func (p *Poller) Refresh(ctx context.Context) error {
	_, err := p.Poll(ctx)
	return err
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_, _ = p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _ = p.Poll(ctx)
		}
	}
}

// Start runs Run in a named goroutine. The channel closes when it has stopped.
func (p *Poller) Start(ctx context.Context) <-chan struct{} {
	return groutine.Go(ctx, "hood-poller", func(ctx context.Context) {
		defer p.logger.WithField("goroutine", groutine.GetName(ctx)).Debug("Poller stopped")
		_ = p.Run(ctx)
	})
}

// Latest returns the last good status and whether the hood counts as available.
func (p *Poller) Latest() (hood.Status, bool) {
	p.mu.RLock()
	st, have := p.latest, p.have
	p.mu.RUnlock()
	return st, have && p.breaker.State() == gobreaker.StateClosed
}

func (p *Poller) Available() bool {
	_, ok := p.Latest()
	return ok
}
