package connmgr

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoodctl_connections_opened_total",
			Help: "GATT sessions established by the connection manager",
		},
	)
	connectionsReused = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoodctl_connections_reused_total",
			Help: "Operations served by an already open session",
		},
	)
	connectionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoodctl_connections_closed_total",
			Help: "GATT sessions torn down, by reason",
		},
		[]string{"reason"},
	)
)

// Teardown reasons.
const (
	reasonIdle      = "idle"
	reasonSwitch    = "peer_switch"
	reasonStale     = "stale"
	reasonTransport = "transport_error"
	reasonExplicit  = "explicit"
)

// MetricsCollectors exposes the connection manager collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		connectionsOpened,
		connectionsReused,
		connectionsClosed,
	}
}
