// package metrics holds the Prometheus collectors for the chart pipeline
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chartx"

// Metrics holds all collectors for the pipeline.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	Runs         *prometheus.CounterVec
	Tasks        *prometheus.CounterVec
	Rows         *prometheus.CounterVec
	CatalogCalls *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	ReportRows   prometheus.Gauge
}

// New creates collectors registered on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates collectors registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		Tasks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_tasks_total",
			Help:      "Chart snapshot fetches by status.",
		}, []string{"status"}),
		Rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Chart rows enriched by status.",
		}, []string{"status"}),
		CatalogCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_calls_total",
			Help:      "Catalog API calls by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		ReportRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_rows",
			Help:      "Aggregate rows produced by the last run.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Run records a finished run.
func (m *Metrics) Run(outcome string, seconds float64, reportRows int) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(seconds)
	m.ReportRows.Set(float64(reportRows))
}

// Task records one fetch task outcome.
func (m *Metrics) Task(ok bool) {
	if m == nil {
		return
	}
	m.Tasks.WithLabelValues(status(ok)).Inc()
}

// Row records one enrichment outcome.
func (m *Metrics) Row(ok bool) {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues(status(ok)).Inc()
}

// CatalogCall records one catalog HTTP exchange. code is "0" for transport failures.
func (m *Metrics) CatalogCall(endpoint, code string) {
	if m == nil {
		return
	}
	m.CatalogCalls.WithLabelValues(endpoint, code).Inc()
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
