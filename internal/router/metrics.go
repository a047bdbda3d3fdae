package router

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the dispatch subsystem.
type Metrics struct {
	RoutesTotal        *prometheus.CounterVec
	ProviderSendsTotal *prometheus.CounterVec
	SendDuration       *prometheus.HistogramVec
	FanoutSize         prometheus.Histogram
}

// NewMetrics registers and returns router metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoutesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertgate_routes_total",
			Help: "Total route calls by outcome.",
		}, []string{"outcome"}),
		ProviderSendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertgate_provider_sends_total",
			Help: "Total provider send attempts by final outcome.",
		}, []string{"provider", "outcome"}),
		SendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alertgate_provider_send_duration_seconds",
			Help:    "Duration of provider sends, retries included.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
		}, []string{"provider"}),
		FanoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "alertgate_fanout_providers",
			Help:    "Providers targeted per dispatched alert.",
			Buckets: prometheus.LinearBuckets(0, 1, 6), // 0 .. 5
		}),
	}

	reg.MustRegister(
		m.RoutesTotal,
		m.ProviderSendsTotal,
		m.SendDuration,
		m.FanoutSize,
	)
	return m
}
