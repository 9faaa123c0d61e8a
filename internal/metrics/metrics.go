// Package metrics exposes Prometheus metrics for document mapping and index operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "elastic_tool"

// Recorder records domain metrics.
type Recorder interface {
	DocumentMapped(schema string, pruned int)
	IndexOperation(action string, success bool, elapsed time.Duration)
}

// Metrics holds the Prometheus collectors.
type Metrics struct {
	registry          *prometheus.Registry
	documentsMapped   *prometheus.CounterVec
	fieldsPruned      *prometheus.CounterVec
	indexOperations   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		documentsMapped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_mapped_total",
			Help:      "Documents mapped through a schema.",
		}, []string{"schema"}),
		fieldsPruned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_pruned_total",
			Help:      "Input fields dropped because the schema does not declare them.",
		}, []string{"schema"}),
		indexOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_operations_total",
			Help:      "Index operations by action and outcome.",
		}, []string{"action", "status"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_operation_duration_seconds",
			Help:      "Duration of index operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
}

// DocumentMapped counts a mapped document and its pruned fields.
func (m *Metrics) DocumentMapped(schema string, pruned int) {
	m.documentsMapped.WithLabelValues(schema).Inc()
	if pruned > 0 {
		m.fieldsPruned.WithLabelValues(schema).Add(float64(pruned))
	}
}

// IndexOperation counts an index operation and observes its duration.
func (m *Metrics) IndexOperation(action string, success bool, elapsed time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.indexOperations.WithLabelValues(action, status).Inc()
	m.operationDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests and custom handlers.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Nop discards every metric.
type Nop struct{}

func (Nop) DocumentMapped(string, int)                 {}
func (Nop) IndexOperation(string, bool, time.Duration) {}
