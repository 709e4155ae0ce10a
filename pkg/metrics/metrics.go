// Package metrics defines the Prometheus collectors for index builds,
// queries, and codec operations, and exposes an HTTP handler for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the tool.
type Metrics struct {
	DocumentsIndexed prometheus.Counter
	IndexTerms       prometheus.Gauge
	BuildDuration    prometheus.Histogram
	QueriesTotal     *prometheus.CounterVec
	IndexEncodes     *prometheus.CounterVec
	IndexDecodes     *prometheus.CounterVec
}

// New creates all collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsIndexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invidx_documents_indexed_total",
				Help: "Total number of documents fed to the index builder.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "invidx_index_terms",
				Help: "Number of distinct terms in the last built index.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invidx_build_duration_seconds",
				Help:    "Time to build an index from a loaded dataset.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invidx_queries_total",
				Help: "Total queries answered, by result type (hit, zero_result).",
			},
			[]string{"result_type"},
		),
		IndexEncodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invidx_index_encodes_total",
				Help: "Index dump operations by format and status.",
			},
			[]string{"format", "status"},
		),
		IndexDecodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invidx_index_decodes_total",
				Help: "Index load operations by format and status.",
			},
			[]string{"format", "status"},
		),
	}
	reg.MustRegister(
		m.DocumentsIndexed,
		m.IndexTerms,
		m.BuildDuration,
		m.QueriesTotal,
		m.IndexEncodes,
		m.IndexDecodes,
	)
	return m
}
