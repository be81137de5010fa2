// Package metrics exposes evidence record activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evidencekit/evidence"
)

// Collector implements evidence.Observer on top of a Prometheus registry.
//
// Example:
//
//	collector := metrics.NewCollector("evidence", nil)
//	rec := evidence.NewRecord(key, registry, info, evidence.WithObserver(collector))
type Collector struct {
	registry *prometheus.Registry

	generated *prometheus.CounterVec
	parsed    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	sizes     *prometheus.HistogramVec
}

var _ evidence.Observer = (*Collector)(nil)

// NewCollector creates a collector registering its metrics on registry. If
// registry is nil a new one is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "evidence"
	}

	c := &Collector{
		registry: registry,
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_generated_total",
			Help:      "Number of evidence records generated, by type.",
		}, []string{"type"}),
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Number of evidence records parsed, by type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_failures_total",
			Help:      "Number of failed generate or deserialize calls, by error kind.",
		}, []string{"operation", "kind"}),
		sizes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_bytes",
			Help:      "Serialized size of evidence records.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"operation"}),
	}

	registry.MustRegister(c.generated, c.parsed, c.failures, c.sizes)
	return c
}

// Registry returns the Prometheus registry the collector writes to
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveGenerated records a generated record
func (c *Collector) ObserveGenerated(typeName string, size int) {
	c.generated.WithLabelValues(typeName).Inc()
	c.sizes.WithLabelValues("generate").Observe(float64(size))
}

// ObserveParsed records a parsed record
func (c *Collector) ObserveParsed(typeName string, size int) {
	c.parsed.WithLabelValues(typeName).Inc()
	c.sizes.WithLabelValues("deserialize").Observe(float64(size))
}

// ObserveFailure records a failed operation
func (c *Collector) ObserveFailure(operation string, err error) {
	c.failures.WithLabelValues(operation, evidence.ErrorKind(err)).Inc()
}

// WriteTextfile writes the current metrics in the Prometheus text format,
// suitable for the node exporter textfile collector
func (c *Collector) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, c.registry)
}
