// Package client is the hood facade: it picks the firmware code path for a peer,
// borrows the pooled session from connmgr and applies the retry policy.
//
// Status reads are retried; commands are not, because repeating an actuation is the
// caller's decision.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/connmgr"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/hood"
	"github.com/srg/hoodctl/internal/hood/legacy"
)

// Client talks to hoods through one connection manager.
type Client struct {
	mgr    *connmgr.Manager
	logger *logrus.Logger

	pin          string
	attempts     int
	backoff      time.Duration
	commandDelay time.Duration
	settleDelay  time.Duration

	variants *hashmap.Map[string, hood.Variant]
}

// New creates a client on top of mgr.
func New(mgr *connmgr.Manager, opts ...Option) *Client {
	c := &Client{
		mgr:      mgr,
		variants: hashmap.New[string, hood.Variant](),
	}
	defaults(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Variant returns the firmware generation of peer. Detection runs once per address.
func (c *Client) Variant(peer device.Peer) hood.Variant {
	if v, ok := c.variants.Get(peer.Address()); ok {
		return v
	}
	v := hood.DetectVariant(peer.Name(), peer.AdvertisedServices())
	v, loaded := c.variants.GetOrInsert(peer.Address(), v)
	if !loaded {
		c.logger.WithFields(logrus.Fields{
			"address": peer.Address(),
			"name":    peer.Name(),
			"variant": v,
		}).Debug("Detected hood variant")
	}
	return v
}

// Disconnect closes the pooled session.
func (c *Client) Disconnect() error {
	return c.mgr.Disconnect()
}

// UpdateDevice reads the current status.
//
// Legacy hoods are decoded from their advertisement and never connected; a missing
// or undecodable advertisement yields a default status. Modern hoods are read over
// GATT; a failed read or a status that does not decode is retried after a fixed backoff.
func (c *Client) UpdateDevice(ctx context.Context, peer device.Peer) (hood.Status, error) {
	if c.Variant(peer) == hood.Legacy {
		return c.legacyAdvertisedStatus(peer), nil
	}

	log := c.logger.WithField("address", peer.Address())

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		st, err := c.readStatus(ctx, peer)
		if err == nil {
			log.WithField("status", st.String()).Debug("Status read")
			return st, nil
		}
		lastErr = err

		// The manager has already dropped the session for transport errors; a frame
		// that did not decode is retried on the same session.
		if ctx.Err() != nil {
			return hood.Status{}, err
		}
		log.WithFields(logrus.Fields{
			"attempt":  attempt,
			"attempts": c.attempts,
			"error":    err,
		}).Warn("Status read failed")

		if attempt < c.attempts {
			if err := sleep(ctx, c.backoff); err != nil {
				return hood.Status{}, err
			}
		}
	}

	log.WithField("attempts", c.attempts).Error("All status read attempts failed")
	return hood.Status{}, fmt.Errorf("status of %s unavailable after %d attempts: %w", peer.Address(), c.attempts, lastErr)
}

func (c *Client) readStatus(ctx context.Context, peer device.Peer) (hood.Status, error) {
	var st hood.Status
	err := c.mgr.Do(ctx, peer, func(s device.Session) error {
		var err error
		st, err = c.readStatusLocked(ctx, s, peer)
		return err
	})
	return st, err
}

// readStatusLocked must run inside mgr.Do.
func (c *Client) readStatusLocked(ctx context.Context, s device.Session, peer device.Peer) (hood.Status, error) {
	status, err := s.ReadCharacteristic(ctx, hood.StatusCharacteristic)
	if err != nil {
		return hood.Status{}, err
	}
	brightness, err := s.ReadCharacteristic(ctx, hood.BrightnessCharacteristic)
	if err != nil {
		return hood.Status{}, err
	}
	colors, err := s.ReadCharacteristic(ctx, hood.ColorCharacteristic)
	if err != nil {
		return hood.Status{}, err
	}
	return hood.DecodeStatus(peer.Name(), peer.Address(), status, brightness, colors)
}

func (c *Client) legacyAdvertisedStatus(peer device.Peer) hood.Status {
	log := c.logger.WithField("address", peer.Address())

	// The radio stack has few connection slots; make sure no pooled session holds one.
	if err := c.mgr.Disconnect(); err != nil {
		log.WithField("error", err).Debug("Failed to release pooled session")
	}

	defaults := hood.NewStatus(hood.Status{Name: peer.Name(), Address: peer.Address()})

	md := peer.ManufacturerData()
	if len(md) == 0 {
		log.Warn("Legacy hood without manufacturer data, reporting defaults")
		return defaults
	}
	r, ok := legacy.DecodeAdvertisement(md)
	if !ok {
		log.WithField("payload_len", len(md)).Debug("Legacy advertisement not decodable")
		log.Warn("Legacy manufacturer data unusable, reporting defaults")
		return defaults
	}
	return r.Status(peer.Name(), peer.Address())
}

// UpdateDeviceViaGATT reads a legacy hood's ASCII status characteristics. It is the
// fallback for units that do not broadcast state.
func (c *Client) UpdateDeviceViaGATT(ctx context.Context, peer device.Peer) (hood.Status, error) {
	if c.Variant(peer) != hood.Legacy {
		return hood.Status{}, fmt.Errorf("%w: GATT text status is legacy only", hood.ErrUnsupported)
	}

	var st hood.Status
	err := c.mgr.Do(ctx, peer, func(s device.Session) error {
		log := c.logger.WithField("address", peer.Address())

		tx, txErr := s.ReadCharacteristic(ctx, hood.LegacyTXUUID)
		if txErr != nil {
			log.WithField("error", txErr).Debug("Legacy TX read failed")
		}
		// The config characteristic only describes fitted features; read it so a
		// unit without TX is still recognized as reachable.
		_, cfErr := s.ReadCharacteristic(ctx, hood.LegacyConfigUUID)
		if cfErr != nil {
			log.WithField("error", cfErr).Debug("Legacy config read failed")
		}
		if txErr != nil && cfErr != nil {
			return txErr
		}

		st = hood.NewStatus(hood.Status{Name: peer.Name(), Address: peer.Address()})
		if txErr == nil {
			if r, ok := legacy.DecodeTXBytes(tx); ok {
				st = r.Status(peer.Name(), peer.Address())
			} else {
				log.WithField("tx", string(tx)).Debug("Legacy TX text too short")
			}
		}
		return nil
	})
	return st, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsUnavailable reports whether err means the hood could not be reached, as opposed
// to a bad request.
func IsUnavailable(err error) bool {
	return device.IsTransportError(err) || errors.Is(err, device.ErrPeerNotFound)
}
