package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics methods are safe on a nil receiver, so a nil *Metrics can be
// handed to the observer interfaces when metrics are not collected.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	snapshotTools    prometheus.Gauge
	httpRequests     *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolrank_upstream_requests_total",
				Help: "Popularity lookups by outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolrank_upstream_duration_seconds",
				Help:    "Duration of GitHub repository lookups in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		snapshotTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolrank_snapshot_tools",
				Help: "Number of tools in the served snapshot",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolrank_http_requests_total",
				Help: "Requests to the tools endpoint by status code",
			},
			[]string{"status"},
		),
	}
}

// ObserveUpstream records one enrichment attempt. Skipped tools never reach
// the network, so their duration is not observed.
func (m *Metrics) ObserveUpstream(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.upstreamDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) SetSnapshotSize(n int) {
	if m == nil {
		return
	}
	m.snapshotTools.Set(float64(n))
}

func (m *Metrics) ObserveRequest(status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}
