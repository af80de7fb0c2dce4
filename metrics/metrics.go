// Package metrics exports decode counters and LDPC iteration histograms
// through Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the decode metrics. A nil *Collector ignores every
// observation.
type Collector struct {
	decodes    *prometheus.CounterVec // Decodes by overall status
	symbols    *prometheus.CounterVec // Symbols by role and status
	iterations *prometheus.HistogramVec
	corrected  prometheus.Counter // Bits changed by error correction
}

// NewCollector registers the decode metrics on reg. A nil reg uses the
// default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		decodes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jabcode_decodes_total",
				Help: "Decode calls by overall status",
			},
			[]string{"status"},
		),
		symbols: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jabcode_symbols_total",
				Help: "Symbols processed by role (master, slave) and status",
			},
			[]string{"role", "status"},
		),
		iterations: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jabcode_ldpc_iterations",
				Help:    "LDPC iterations needed per decoded symbol",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"algorithm"},
		),
		corrected: f.NewCounter(
			prometheus.CounterOpts{
				Name: "jabcode_corrected_bits_total",
				Help: "Data bits changed by error correction",
			},
		),
	}
}

// ObserveDecode counts one decode call.
func (c *Collector) ObserveDecode(status string) {
	if c == nil {
		return
	}
	c.decodes.WithLabelValues(status).Inc()
}

// ObserveSymbol counts one symbol. Algorithm is empty for symbols that did
// not reach error correction.
func (c *Collector) ObserveSymbol(master bool, status, algorithm string, iterations, corrected int) {
	if c == nil {
		return
	}
	role := "slave"
	if master {
		role = "master"
	}
	c.symbols.WithLabelValues(role, status).Inc()
	if algorithm == "" {
		return
	}
	c.iterations.WithLabelValues(algorithm).Observe(float64(iterations))
	c.corrected.Add(float64(corrected))
}
