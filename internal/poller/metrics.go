package poller

import "github.com/prometheus/client_golang/prometheus"

var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoodctl_polls_total",
			Help: "Status polls, by result",
		},
		[]string{"address", "result"},
	)
	hoodAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoodctl_hood_available",
			Help: "1 while the hood has a usable status",
		},
		[]string{"address"},
	)
	hoodFanLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoodctl_hood_fan_level",
			Help: "Last known fan level",
		},
		[]string{"address"},
	)
	hoodLightOn = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoodctl_hood_light_on",
			Help: "Last known light state",
		},
		[]string{"address", "side"},
	)
)

const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultRejected = "rejected"
)

// MetricsCollectors exposes the poller collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		pollsTotal,
		hoodAvailable,
		hoodFanLevel,
		hoodLightOn,
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
