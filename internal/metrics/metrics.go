// Package metrics exposes Prometheus instruments for ingestion and query handling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datagent"

// Recorder owns a private registry so tests and binaries never share global state.
type Recorder struct {
	registry          *prometheus.Registry
	ingestions        *prometheus.CounterVec
	sheetsRejected    *prometheus.CounterVec
	ingestionDuration prometheus.Histogram
	queries           *prometheus.CounterVec
}

// NewRecorder registers the datagent instruments plus the Go and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Workbook ingestions by result.",
		}, []string{"result"}),
		sheetsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_rejected_total",
			Help:      "Sheets rejected during ingestion by error type.",
		}, []string{"error_type"}),
		ingestionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Wall time spent ingesting a workbook.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Natural language queries by status.",
		}, []string{"status"}),
	}
	r.registry.MustRegister(
		r.ingestions,
		r.sheetsRejected,
		r.ingestionDuration,
		r.queries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveIngestion records one finished ingestion.
func (r *Recorder) ObserveIngestion(result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.ingestions.WithLabelValues(result).Inc()
	r.ingestionDuration.Observe(elapsed.Seconds())
}

// SheetRejected counts a sheet that failed validation.
func (r *Recorder) SheetRejected(errorType string) {
	if r == nil {
		return
	}
	r.sheetsRejected.WithLabelValues(errorType).Inc()
}

// QueryProcessed counts a query by its logged status.
func (r *Recorder) QueryProcessed(status string) {
	if r == nil {
		return
	}
	r.queries.WithLabelValues(status).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
