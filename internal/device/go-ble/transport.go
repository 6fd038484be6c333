package goble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/groutine"
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultReadTimeout    = 5 * time.Second
)

// Transport opens GATT sessions through the platform BLE stack.
type Transport struct {
	logger         *logrus.Logger
	connectTimeout time.Duration
	readTimeout    time.Duration
}

type TransportOption func(*Transport)

func WithConnectTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.connectTimeout = d
		}
	}
}

// WithReadTimeout bounds every characteristic read and write.
func WithReadTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.readTimeout = d
		}
	}
}

func NewTransport(logger *logrus.Logger, opts ...TransportOption) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	t := &Transport{
		logger:         logger,
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connect dials the peer and discovers its profile.
func (t *Transport) Connect(ctx context.Context, peer device.Peer) (device.Session, error) {
	address := peer.Address()
	if strings.TrimSpace(address) == "" {
		return nil, &device.TransportError{Op: "connect", Err: fmt.Errorf("device address is empty")}
	}
	log := t.logger.WithField("address", address)

	if _, err := HostDevice(); err != nil {
		log.WithField("error", err).Error("Failed to create BLE device")
		return nil, &device.TransportError{Op: "connect", Address: address, Err: err}
	}

	connCtx, cancel := context.WithTimeout(ctx, t.connectTimeout)
	defer cancel()

	log.WithField("timeout", t.connectTimeout).Debug("Dialing BLE device...")
	client, err := ble.Dial(connCtx, ble.NewAddr(address))
	if err != nil {
		log.WithField("error", err).Warn("Failed to dial BLE device")
		return nil, &device.TransportError{Op: "connect", Address: address, Err: NormalizeError(err)}
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		log.WithField("error", err).Warn("Failed to discover profile")
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			log.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return nil, &device.TransportError{Op: "discover", Address: address, Err: NormalizeError(err)}
	}

	s := newSession(client, address, profile, t.readTimeout, t.logger)

	// Not every platform client exposes Disconnected(); without it a dead link is
	// noticed on the next failed read.
	if dc, ok := client.(interface{ Disconnected() <-chan struct{} }); ok {
		groutine.Go(context.Background(), "ble-connection-monitor", func(ctx context.Context) {
			select {
			case <-dc.Disconnected():
				s.markDropped()
				log.Warn("Peer dropped the connection")
			case <-s.done:
			}
		})
	} else {
		log.Debug("Client does not support Disconnected() channel")
	}

	log.WithFields(logrus.Fields{
		"services":        len(s.services),
		"characteristics": len(s.chars),
	}).Info("BLE device connected")
	return s, nil
}
