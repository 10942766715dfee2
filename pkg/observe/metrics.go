package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus build observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "frond").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for build and flush duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus build observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "frond",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a build.Observer that exports Prometheus metrics.
//
// Node paths are unbounded, so they are deliberately not a label; builds
// are counted by outcome only.
type Metrics struct {
	buildsTotal     *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	flushesTotal    prometheus.Counter
	flushDuration   prometheus.Histogram
	nodesRebuilt    prometheus.Counter
	fetchesInflight prometheus.Gauge
}

// NewMetrics creates the Prometheus build observer.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_builds_total",
			Help:        "Total number of node builds by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_build_duration_seconds",
			Help:        "Node build duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flush passes",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodesRebuilt: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_rebuilt_total",
			Help:        "Total number of subtrees replaced by flush passes",
			ConstLabels: config.ConstLabels,
		}),

		fetchesInflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "remote_fetches_inflight",
			Help:        "Number of remote fetches currently in flight",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// InflightGauge exposes the in-flight fetch gauge for wiring into a
// remote fetcher.
func (m *Metrics) InflightGauge() prometheus.Gauge {
	return m.fetchesInflight
}

// BuildStart implements build.Observer.
func (m *Metrics) BuildStart(string) {}

// BuildEnd implements build.Observer.
func (m *Metrics) BuildEnd(_ string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.buildsTotal.WithLabelValues(status).Inc()
	m.buildDuration.Observe(elapsed.Seconds())
}

// FlushStart implements build.Observer.
func (m *Metrics) FlushStart() {}

// FlushEnd implements build.Observer.
func (m *Metrics) FlushEnd(affected int, elapsed time.Duration) {
	m.flushesTotal.Inc()
	m.flushDuration.Observe(elapsed.Seconds())
	m.nodesRebuilt.Add(float64(affected))
}
