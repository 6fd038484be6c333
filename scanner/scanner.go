package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/devicefactory"
	"github.com/srg/hoodctl/internal/hood"
)

// ProgressCallback is called when the scan phase changes
type ProgressCallback func(phase string)

// Hood is one discovered hood with the advertisement it was last seen with.
type Hood struct {
	Peer        *device.StaticPeer
	Variant     hood.Variant
	RSSI        int
	Connectable bool
	LastSeen    time.Time
}

// Scanner handles hood discovery
type Scanner struct {
	logger *logrus.Logger
}

// ScanOptions configures scanning behavior
type ScanOptions struct {
	Duration        time.Duration `default:"10s"`
	DuplicateFilter bool          `default:"true"`
	AllowList       []string
	BlockList       []string
	// IncludeUnsupported also lists peers that do not look like hoods.
	IncludeUnsupported bool `default:"false"`
}

// DefaultScanOptions returns default scanning options
func DefaultScanOptions() *ScanOptions {
	opts := &ScanOptions{}
	defaults.SetDefaults(opts)
	return opts
}

// NewScanner creates a new hood scanner
func NewScanner(logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scanner{logger: logger}
}

// Scan listens for the configured duration and returns the hoods heard, strongest first.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions, progressCallback ProgressCallback) ([]Hood, error) {
	if opts == nil {
		opts = DefaultScanOptions()
	}
	if progressCallback == nil {
		progressCallback = func(string) {} // No-op callback
	}

	s.logger.WithField("duration", opts.Duration).Info("Starting BLE scan...")
	progressCallback("Scanning")

	found := hashmap.New[string, Hood]()
	scanCtx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	err := s.scan(scanCtx, opts.DuplicateFilter, func(adv device.Advertisement) bool {
		if !includes(adv, opts) {
			return false
		}
		h := newHood(adv)
		if _, existing := found.Get(h.Peer.Address()); !existing {
			s.logger.WithFields(logrus.Fields{
				"device":  h.Peer.Name(),
				"address": h.Peer.Address(),
				"rssi":    h.RSSI,
				"variant": h.Variant,
			}).Info("Discovered hood")
		}
		found.Set(h.Peer.Address(), h)
		return false
	})
	if err != nil {
		return nil, err
	}

	progressCallback("Processing results")

	hoods := make([]Hood, 0, found.Len())
	found.Range(func(_ string, h Hood) bool {
		hoods = append(hoods, h)
		return true
	})
	sort.Slice(hoods, func(i, j int) bool {
		if hoods[i].RSSI != hoods[j].RSSI {
			return hoods[i].RSSI > hoods[j].RSSI
		}
		return hoods[i].Peer.Address() < hoods[j].Peer.Address()
	})

	s.logger.WithField("device_count", len(hoods)).Info("BLE scan completed")
	return hoods, nil
}

// Resolve scans until the peer with address advertises, or until timeout.
// A peer that is not heard in time yields device.ErrPeerNotFound.
func (s *Scanner) Resolve(ctx context.Context, address string, timeout time.Duration) (device.Peer, error) {
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var peer *device.StaticPeer
	err := s.scan(scanCtx, false, func(adv device.Advertisement) bool {
		if !strings.EqualFold(adv.Addr(), address) {
			return false
		}
		peer = device.PeerFromAdvertisement(adv)
		cancel()
		return true
	})
	if err != nil {
		return nil, err
	}
	if peer == nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s not heard within %v", device.ErrPeerNotFound, address, timeout)
	}
	return peer, nil
}

// Resolver adapts Resolve to device.Resolver with a fixed timeout.
func (s *Scanner) Resolver(timeout time.Duration) device.Resolver {
	return resolverFunc(func(ctx context.Context, address string) (device.Peer, error) {
		return s.Resolve(ctx, address, timeout)
	})
}

type resolverFunc func(ctx context.Context, address string) (device.Peer, error)

func (f resolverFunc) Resolve(ctx context.Context, address string) (device.Peer, error) {
	return f(ctx, address)
}

// scan runs the radio until ctx ends or handle returns true. The end of ctx is the
// normal way a scan finishes and is not an error.
func (s *Scanner) scan(ctx context.Context, allowDup bool, handle func(device.Advertisement) bool) error {
	dev, err := devicefactory.DeviceFactory()
	if err != nil {
		return fmt.Errorf("failed to create BLE device: %w", err)
	}

	var stopped bool
	err = dev.Scan(ctx, allowDup, func(adv device.Advertisement) {
		if stopped {
			return
		}
		stopped = handle(adv)
	})
	if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

func newHood(adv device.Advertisement) Hood {
	peer := device.PeerFromAdvertisement(adv)
	return Hood{
		Peer:        peer,
		Variant:     hood.DetectVariant(peer.Name(), peer.AdvertisedServices()),
		RSSI:        adv.RSSI(),
		Connectable: adv.Connectable(),
		LastSeen:    time.Now(),
	}
}

// includes applies the allow/block lists and the hood filter
func includes(adv device.Advertisement, opts *ScanOptions) bool {
	addr := adv.Addr()

	for _, blocked := range opts.BlockList {
		if strings.EqualFold(addr, blocked) {
			return false
		}
	}

	if len(opts.AllowList) > 0 {
		allowed := false
		for _, a := range opts.AllowList {
			if strings.EqualFold(addr, a) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return opts.IncludeUnsupported || hood.IsSupported(adv.LocalName(), adv.Services())
}
