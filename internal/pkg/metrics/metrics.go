// Package metrics exposes Prometheus metrics for the performance dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the buckets of the annotation latency histogram, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.runtime = true
	}
}

// Manager owns a private registry and every metric the services record.
// A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	runtime          bool
	registry         *prometheus.Registry

	imports            *prometheus.CounterVec
	recordsReconciled  *prometheus.CounterVec
	monthsOverridden   prometheus.Counter
	annotations        *prometheus.CounterVec
	annotationDuration *prometheus.HistogramVec
	activeSessions     prometheus.Gauge
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "performance_dashboard",
		histogramBuckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)

	m.imports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "imports_total",
		Help:      "Number of successful CSV imports by mode",
	}, []string{"mode"})

	m.recordsReconciled = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "records_reconciled_total",
		Help:      "Employee records applied to a registry, by outcome",
	}, []string{"outcome"})

	m.monthsOverridden = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "months_overridden_total",
		Help:      "Existing monthly records replaced by a later batch",
	})

	m.annotations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "annotations_total",
		Help:      "Annotation runs by kind and note source",
	}, []string{"kind", "source"})

	m.annotationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "annotation_duration_seconds",
		Help:      "Time spent producing annotations, including the LLM call",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held in memory",
	})

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) ObserveImport(mode string, inserted, merged, overridden int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(mode).Inc()
	m.recordsReconciled.WithLabelValues("inserted").Add(float64(inserted))
	m.recordsReconciled.WithLabelValues("merged").Add(float64(merged))
	m.monthsOverridden.Add(float64(overridden))
}

func (m *Manager) ObserveAnnotation(kind, source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.annotations.WithLabelValues(kind, source).Inc()
	m.annotationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Manager) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
