package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of ETL runs. A private registry is
// used so that the metrics can be dumped to a node_exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	RecordsProcessed prometheus.Counter
	ChunksProcessed  prometheus.Counter
	RowsLoaded       *prometheus.CounterVec
	RowsExported     *prometheus.CounterVec
	PhaseDuration    *prometheus.GaugeVec
	LastSuccess      prometheus.Gauge
	RunsTotal        *prometheus.CounterVec
}

// NewMetrics creates and registers the ETL metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "customers_etl_records_processed_total",
			Help: "Number of fixed-width records transformed",
		}),
		ChunksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "customers_etl_chunks_processed_total",
			Help: "Number of chunks transformed by the worker pool",
		}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customers_etl_rows_loaded_total",
			Help: "Number of rows appended to the database per table",
		}, []string{"table"}),
		RowsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customers_etl_rows_exported_total",
			Help: "Number of rows written to xlsx files per table",
		}, []string{"table"}),
		PhaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "customers_etl_phase_duration_seconds",
			Help: "Duration of the last execution of each phase",
		}, []string{"phase"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "customers_etl_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customers_etl_runs_total",
			Help: "Number of runs per final status",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.RecordsProcessed,
		m.ChunksProcessed,
		m.RowsLoaded,
		m.RowsExported,
		m.PhaseDuration,
		m.LastSuccess,
		m.RunsTotal,
	)
	return m
}

// ObservePhase records the duration of a phase
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

// ObserveRun counts a finished run
func (m *Metrics) ObserveRun(status string, at time.Time) {
	m.RunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.LastSuccess.Set(float64(at.Unix()))
	}
}

// WriteTextfile writes the metrics in the text exposition format to path
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
