package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/hoodctl/internal/client"
	"github.com/srg/hoodctl/internal/connmgr"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/devicefactory"
	"github.com/srg/hoodctl/pkg/config"
	"github.com/srg/hoodctl/scanner"
)

// hoodRuntime is everything a hood command needs: one connection manager and the
// client on top of it, plus the scanner used to turn an address into a peer.
type hoodRuntime struct {
	cfg     *config.Config
	logger  *logrus.Logger
	scanner *scanner.Scanner
	mgr     *connmgr.Manager
	client  *client.Client
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newHoodRuntime validates configuration and flags. Nothing touches the radio
// until a command uses the result.
func newHoodRuntime(cmd *cobra.Command) (*hoodRuntime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	transport := devicefactory.TransportFactory(logger, devicefactory.TransportOptions{
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
	})
	mgr := connmgr.New(transport,
		connmgr.WithIdleTimeout(cfg.IdleTimeout),
		connmgr.WithLogger(logger),
	)

	return &hoodRuntime{
		cfg:     cfg,
		logger:  logger,
		scanner: scanner.NewScanner(logger),
		mgr:     mgr,
		client: client.New(mgr,
			client.WithLogger(logger),
			client.WithLegacyPIN(cfg.LegacyPIN),
			client.WithAttempts(cfg.UpdateAttempts),
			client.WithBackoff(cfg.RetryBackoff),
			client.WithCommandDelay(cfg.CommandDelay),
			client.WithSettleDelay(cfg.SettleDelay),
		),
	}, nil
}

// resolve listens for address and returns the peer with its current advertisement.
func (r *hoodRuntime) resolve(ctx context.Context, address string) (device.Peer, error) {
	return r.scanner.Resolver(r.cfg.ScanTimeout).Resolve(ctx, address)
}

// Close drops the pooled connection right away instead of waiting for the idle timer,
// then releases the radio.
func (r *hoodRuntime) Close() error {
	return errors.Join(r.mgr.Close(), devicefactory.ReleaseDevice())
}

// commandContext is cancelled by Ctrl+C or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
