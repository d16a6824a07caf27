// Package metrics records comparison outcomes in a Prometheus registry and
// exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/vgmatch/internal/model"
)

// Metrics holds the vgmatch collectors
type Metrics struct {
	registry *prometheus.Registry

	ComparisonsTotal   *prometheus.CounterVec
	ErrorsTotal        prometheus.Counter
	Haplotypes         prometheus.Histogram
	ComparisonDuration prometheus.Histogram
	CacheRequestsTotal *prometheus.CounterVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ComparisonsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vgmatch_comparisons_total",
			Help: "Comparisons evaluated, by status",
		}, []string{"status"}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vgmatch_comparison_errors_total",
			Help: "Comparisons that could not be evaluated",
		}),
		Haplotypes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vgmatch_haplotypes",
			Help:    "Haplotype paths per representation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		ComparisonDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vgmatch_comparison_duration_seconds",
			Help:    "Time to evaluate one comparison",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
		CacheRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vgmatch_cache_requests_total",
			Help: "Representation cache lookups, by result",
		}, []string{"result"}),
	}
}

// RecordComparison counts one comparison report
func (m *Metrics) RecordComparison(r *model.ComparisonReport) {
	if r.Failed() {
		m.ErrorsTotal.Inc()
		return
	}
	m.ComparisonsTotal.WithLabelValues(r.Status).Inc()
	m.Haplotypes.Observe(float64(r.Left.Paths))
	m.Haplotypes.Observe(float64(r.Right.Paths))
	m.ComparisonDuration.Observe(r.Elapsed.Seconds())
}

// RecordCache adds cache lookup counts
func (m *Metrics) RecordCache(hits, misses uint64) {
	m.CacheRequestsTotal.WithLabelValues("hit").Add(float64(hits))
	m.CacheRequestsTotal.WithLabelValues("miss").Add(float64(misses))
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every collector to path atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
