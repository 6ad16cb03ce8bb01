// Package metrics exposes Prometheus collectors for analyses, HTTP traffic
// and export retention.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mtr03"

// Analysis outcomes used as label values.
const (
	OutcomeOK           = "ok"
	OutcomeNoData       = "no_data"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	analyses         *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	linesExtracted   prometheus.Counter
	recordsParsed    prometheus.Counter
	pagesSkipped     prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	exportsStored prometheus.Counter
	exportsSwept  prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: g,
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Report analyses by interval mode and outcome.",
		}, []string{"mode", "outcome"}),
		analysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent extracting, parsing and aggregating a report.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		linesExtracted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_extracted_total",
			Help:      "Report lines that matched the production row filter.",
		}),
		recordsParsed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Lines converted into dated records.",
		}),
		pagesSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_skipped_total",
			Help:      "PDF pages whose text could not be read.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		exportsStored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_stored_total",
			Help:      "Export files written to storage.",
		}),
		exportsSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_swept_total",
			Help:      "Expired export files deleted by the retention sweep.",
		}),
	}
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(mode, outcome).Inc()
	m.analysisDuration.Observe(d.Seconds())
}

// AddExtraction records the line, record and skipped page counts of an analysis.
func (m *Metrics) AddExtraction(lines, records, skippedPages int) {
	if m == nil {
		return
	}
	m.linesExtracted.Add(float64(lines))
	m.recordsParsed.Add(float64(records))
	m.pagesSkipped.Add(float64(skippedPages))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ExportStored counts a stored export.
func (m *Metrics) ExportStored() {
	if m == nil {
		return
	}
	m.exportsStored.Inc()
}

// ExportsSwept counts exports removed by the retention sweep.
func (m *Metrics) ExportsSwept(n int) {
	if m == nil {
		return
	}
	m.exportsSwept.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
