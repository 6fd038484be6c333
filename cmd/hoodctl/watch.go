package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/hoodctl/internal/connmgr"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/groutine"
	"github.com/srg/hoodctl/internal/hood"
	"github.com/srg/hoodctl/internal/poller"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <address>",
	Short: "Poll a hood and print its state",
	Long: `Poll a hood on a fixed interval and print one line per poll until interrupted.

A single failed poll keeps showing the last known state. The hood is reported
unavailable after failure_threshold consecutive failures.

With --metrics-addr the hood's state and the connection statistics are served
for Prometheus at /metrics.

Examples:
  hoodctl watch AA:BB:CC:DD:EE:01
  hoodctl watch AA:BB:CC:DD:EE:01 --interval 5s --metrics-addr :9105`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchInterval    time.Duration
	watchMetricsAddr string
)

const metricsShutdownTimeout = 5 * time.Second

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (defaults to poll_interval from the config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9105")
}

// advertisedUpdater re-resolves legacy hoods before every poll, since their state
// travels in the advertisement and a resolved peer is a snapshot of it.
type advertisedUpdater struct {
	rt *hoodRuntime
}

func (u *advertisedUpdater) UpdateDevice(ctx context.Context, peer device.Peer) (hood.Status, error) {
	if u.rt.client.Variant(peer) == hood.Legacy {
		fresh, err := u.rt.resolve(ctx, peer.Address())
		if err != nil {
			return hood.Status{}, err
		}
		peer = fresh
	}
	return u.rt.client.UpdateDevice(ctx, peer)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := newHoodRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	cmd.SilenceUsage = true

	interval := rt.cfg.PollInterval
	if watchInterval > 0 {
		interval = watchInterval
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	peer, err := rt.resolve(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := poller.New(&advertisedUpdater{rt: rt}, peer,
		poller.WithLogger(rt.logger),
		poller.WithInterval(interval),
		poller.WithFailureThreshold(uint32(rt.cfg.FailureThreshold)),
		poller.WithOnUpdate(func(st hood.Status, available bool, err error) {
			printWatchLine(out, time.Now(), st, available, err)
		}),
	)

	var metricsDone <-chan struct{}
	if watchMetricsAddr != "" {
		metricsDone = serveMetrics(ctx, watchMetricsAddr, rt.logger)
	}

	<-p.Start(ctx)
	if metricsDone != nil {
		<-metricsDone
	}
	return ctx.Err()
}

// metricsRegistry holds only hoodctl's own collectors.
func metricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(connmgr.MetricsCollectors()...)
	reg.MustRegister(poller.MetricsCollectors()...)
	return reg
}

// serveMetrics serves /metrics until ctx is done. The channel closes once the
// server has shut down.
func serveMetrics(ctx context.Context, addr string, logger *logrus.Logger) <-chan struct{} {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	return groutine.Go(ctx, "metrics-server", func(ctx context.Context) {
		stopped := groutine.Go(ctx, "metrics-server-shutdown", func(ctx context.Context) {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})

		logger.WithField("addr", addr).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server failed")
		}
		<-stopped
	})
}
