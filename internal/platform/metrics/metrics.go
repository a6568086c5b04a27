// Package metrics exposes Prometheus collectors for patient submissions,
// document ingestion, live sessions and prioritization latency.
package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so that several instances can coexist in
// tests.
type Metrics struct {
	Registry *prometheus.Registry

	PatientSubmissions *prometheus.CounterVec
	DocumentsIngested  *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	PrioritySortTime   prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		PatientSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surgprep_patient_submissions_total",
			Help: "Add-patient submissions by outcome",
		}, []string{"outcome"}),
		DocumentsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surgprep_documents_ingested_total",
			Help: "Document uploads by outcome",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "surgprep_active_sessions",
			Help: "Sessions currently held in memory",
		}),
		PrioritySortTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "surgprep_priority_sort_duration_seconds",
			Help:    "Duration of patient prioritization passes",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
	reg.MustRegister(
		m.PatientSubmissions,
		m.DocumentsIngested,
		m.ActiveSessions,
		m.PrioritySortTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// PatientSubmitted records one add-patient submission.
func (m *Metrics) PatientSubmitted(outcome string) {
	m.PatientSubmissions.WithLabelValues(outcome).Inc()
}

// PrioritySorted records the duration of one prioritization pass.
func (m *Metrics) PrioritySorted(d time.Duration) {
	m.PrioritySortTime.Observe(d.Seconds())
}

// DocumentIngested records one document upload.
func (m *Metrics) DocumentIngested(outcome string) {
	m.DocumentsIngested.WithLabelValues(outcome).Inc()
}

// SessionsActive sets the live session gauge.
func (m *Metrics) SessionsActive(n int) {
	m.ActiveSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
