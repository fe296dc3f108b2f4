// Package metrics exposes the scan cycle's counters through a
// Prometheus registry. The binary is a batch job, so metrics are
// flushed to a textfile for the node-exporter textfile collector
// instead of being served over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	instrumentsTotal *prometheus.CounterVec
	candidates       prometheus.Gauge
	allocations      prometheus.Gauge
	regimeSafe       prometheus.Gauge
	ledgerWritten    prometheus.Gauge
	cycleDuration    prometheus.Gauge
	cycleTimestamp   prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		instrumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fe_scan_instruments_total",
				Help: "Instruments processed in the scan loop, by result",
			},
			[]string{"result"},
		),
		candidates: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fe_scan_candidates",
				Help: "Candidates that passed screening before portfolio construction",
			},
		),
		allocations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fe_scan_allocations",
				Help: "Allocations surviving sector dedup and capital scaling",
			},
		),
		regimeSafe: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fe_regime_safe",
				Help: "1 when the benchmark regime gate allowed entries, 0 when it blocked",
			},
		),
		ledgerWritten: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fe_ledger_rows_written",
				Help: "History rows appended by the last cycle after dedup",
			},
		),
		cycleDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fe_cycle_duration_seconds",
				Help: "Wall time of the last scan cycle",
			},
		),
		cycleTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fe_cycle_completed_timestamp_seconds",
				Help: "Unix time the last scan cycle completed",
			},
		),
	}

	reg.MustRegister(r.instrumentsTotal)
	reg.MustRegister(r.candidates)
	reg.MustRegister(r.allocations)
	reg.MustRegister(r.regimeSafe)
	reg.MustRegister(r.ledgerWritten)
	reg.MustRegister(r.cycleDuration)
	reg.MustRegister(r.cycleTimestamp)

	return r
}

// RecordInstrument records one scanned instrument's result:
// "signal", "nosignal" or "error".
func (r *Registry) RecordInstrument(result string) {
	r.instrumentsTotal.WithLabelValues(result).Inc()
}

// SetCandidates sets the size of the pre-dedup candidate pool.
func (r *Registry) SetCandidates(n int) {
	r.candidates.Set(float64(n))
}

// SetAllocations sets the size of the final allocation list.
func (r *Registry) SetAllocations(n int) {
	r.allocations.Set(float64(n))
}

// SetRegime records the gate outcome.
func (r *Registry) SetRegime(safe bool) {
	if safe {
		r.regimeSafe.Set(1)
	} else {
		r.regimeSafe.Set(0)
	}
}

// SetLedgerWritten records how many rows the ledger actually appended.
func (r *Registry) SetLedgerWritten(n int) {
	r.ledgerWritten.Set(float64(n))
}

// RecordCycle records the completed cycle's duration and finish time.
func (r *Registry) RecordCycle(durationSeconds, unixTime float64) {
	r.cycleDuration.Set(durationSeconds)
	r.cycleTimestamp.Set(unixTime)
}

// WriteTextfile atomically flushes the registry to path in the
// Prometheus text exposition format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
