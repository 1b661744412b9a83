package editor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the store's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "personstore").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for save duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the save duration histogram buckets.
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

// Metrics records save outcomes and edit activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	savesTotal   *prometheus.CounterVec
	saveDuration prometheus.Histogram
	activeEdit   prometheus.Gauge
}

// NewMetrics creates and registers the store metrics.
//
// Metrics collected:
//   - personstore_saves_total: counter of save completions by status
//     (success, error, superseded)
//   - personstore_save_duration_seconds: histogram of save round-trip time
//   - personstore_active_edit: gauge, 1 while a record is selected for edit
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "personstore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		savesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "saves_total",
			Help:        "Total number of save completions by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		saveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "save_duration_seconds",
			Help:        "Save round-trip duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeEdit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_edit",
			Help:        "Whether a record is currently selected for editing",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) observeSave(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.savesTotal.WithLabelValues(status).Inc()
	m.saveDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) setEditing(editing bool) {
	if m == nil {
		return
	}
	if editing {
		m.activeEdit.Set(1)
	} else {
		m.activeEdit.Set(0)
	}
}
