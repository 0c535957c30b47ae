package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angeloszaimis/solver-dispatch/internal/circuitbreaker"
)

const namespace = "solver_dispatch"

// Metrics holds the prometheus instruments fed by the Collector.
type Metrics struct {
	Dispatches     *prometheus.CounterVec
	Fallbacks      *prometheus.CounterVec
	RemoteAttempts *prometheus.CounterVec
	RemoteLatency  prometheus.Histogram
	CacheLookups   *prometheus.CounterVec
	DroppedEvents  prometheus.Counter
	registry       *prometheus.Registry
}

func NewMetrics(breakers BreakerStats) *Metrics {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Successful dispatches by the backend that answered.",
		}, []string{"provenance"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Remote failures that caused a fallback to the local engine, by failure kind.",
		}, []string{"kind"}),
		RemoteAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_attempts_total",
			Help:      "Individual remote solver attempts by outcome.",
		}, []string{"outcome"}),
		RemoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_attempt_duration_seconds",
			Help:      "Duration of individual remote solver attempts.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Local engine cache lookups by result.",
		}, []string{"result"}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Metric events dropped because the collector buffer was full.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Dispatches,
		m.Fallbacks,
		m.RemoteAttempts,
		m.RemoteLatency,
		m.CacheLookups,
		m.DroppedEvents,
	)
	if breakers != nil {
		m.registry.MustRegister(newBreakerCollector(breakers))
	}

	return m
}

// Registry exposes the underlying prometheus registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// BreakerStats is satisfied by *circuitbreaker.Registry.
type BreakerStats interface {
	Stats() map[string]circuitbreaker.State
}

// breakerCollector reads breaker states at scrape time instead of tracking
// every transition.
type breakerCollector struct {
	stats BreakerStats
	desc  *prometheus.Desc
}

func newBreakerCollector(stats BreakerStats) *breakerCollector {
	return &breakerCollector{
		stats: stats,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "breaker_state"),
			"Circuit breaker state per remote endpoint (0=closed, 1=open, 2=half-open).",
			[]string{"endpoint"}, nil,
		),
	}
}

func (c *breakerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *breakerCollector) Collect(ch chan<- prometheus.Metric) {
	for endpoint, state := range c.stats.Stats() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(state), endpoint)
	}
}
