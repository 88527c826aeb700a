// Package metrics provides the Prometheus collectors for the occupancy service.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	SnapshotsReceived  prometheus.Counter
	ReconnectAttempts  prometheus.Counter
	LiveState          prometheus.Gauge
	Degraded           prometheus.Gauge
	FeedLoadFailures   *prometheus.CounterVec
	FeedRows           *prometheus.GaugeVec
	CacheWriteFailures prometheus.Counter
	registry           *prometheus.Registry
}

// New creates the collectors and registers them on a dedicated registry
func New() (*Metrics, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on registry
func NewWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register occupancy metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.SnapshotsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libocc_live_snapshots_received_total",
		Help: "Total number of live occupancy snapshots delivered",
	})

	m.ReconnectAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libocc_live_reconnect_attempts_total",
		Help: "Total number of live feed reconnection attempts",
	})

	m.LiveState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "libocc_live_state",
		Help: "Live feed state (0 disconnected, 1 connecting, 2 connected, 3 degraded)",
	})

	m.Degraded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "libocc_live_degraded",
		Help: "1 when the live feed gave up reconnecting",
	})

	m.FeedLoadFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "libocc_feed_load_failures_total",
		Help: "Total number of failed feed loads",
	}, []string{"feed"})

	m.FeedRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "libocc_feed_rows",
		Help: "Rows in the most recently loaded feed",
	}, []string{"feed"})

	m.CacheWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libocc_cache_write_failures_total",
		Help: "Total number of failed durable cache writes",
	})
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.SnapshotsReceived.Describe(ch)
	m.ReconnectAttempts.Describe(ch)
	m.LiveState.Describe(ch)
	m.Degraded.Describe(ch)
	m.FeedLoadFailures.Describe(ch)
	m.FeedRows.Describe(ch)
	m.CacheWriteFailures.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.SnapshotsReceived.Collect(ch)
	m.ReconnectAttempts.Collect(ch)
	m.LiveState.Collect(ch)
	m.Degraded.Collect(ch)
	m.FeedLoadFailures.Collect(ch)
	m.FeedRows.Collect(ch)
	m.CacheWriteFailures.Collect(ch)
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncrementSnapshots counts one delivered live snapshot.
func (m *Metrics) IncrementSnapshots() {
	if m == nil {
		return
	}
	m.SnapshotsReceived.Inc()
}

// IncrementReconnectAttempts counts one scheduled reconnect.
func (m *Metrics) IncrementReconnectAttempts() {
	if m == nil {
		return
	}
	m.ReconnectAttempts.Inc()
}

// UpdateLiveState records the live client state.
func (m *Metrics) UpdateLiveState(state int, degraded bool) {
	if m == nil {
		return
	}
	m.LiveState.Set(float64(state))
	if degraded {
		m.Degraded.Set(1)
	} else {
		m.Degraded.Set(0)
	}
}

// ObserveFeedLoad records the outcome of one feed load.
func (m *Metrics) ObserveFeedLoad(feed string, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.FeedLoadFailures.WithLabelValues(feed).Inc()
		return
	}
	m.FeedRows.WithLabelValues(feed).Set(float64(rows))
}

// IncrementCacheWriteFailures counts one failed durable cache write.
func (m *Metrics) IncrementCacheWriteFailures() {
	if m == nil {
		return
	}
	m.CacheWriteFailures.Inc()
}
