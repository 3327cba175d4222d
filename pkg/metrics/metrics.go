// Package metrics defines the Prometheus collectors for the scoring service
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	ScoreRequestsTotal    *prometheus.CounterVec
	ScoreLatency          *prometheus.HistogramVec
	CorpusSize            prometheus.Histogram
	VocabularySize        prometheus.Histogram
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	AnalyticsDroppedTotal prometheus.Counter
}

// New creates all collectors and registers them on reg. A nil reg uses the
// global default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ScoreRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "score_requests_total",
				Help: "Total scoring requests by result (ok, invalid, error).",
			},
			[]string{"result"},
		),
		ScoreLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "score_latency_seconds",
				Help:    "Scoring latency in seconds by execution mode.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"mode"},
		),
		CorpusSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "score_corpus_documents",
				Help:    "Number of documents per scoring request.",
				Buckets: []float64{1, 2, 5, 10, 50, 100, 500, 1000, 5000},
			},
		),
		VocabularySize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "score_query_vocabulary_terms",
				Help:    "Distinct terms in the query document.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "score_cache_hits_total",
				Help: "Total number of score cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "score_cache_misses_total",
				Help: "Total number of score cache misses.",
			},
		),
		AnalyticsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_events_dropped_total",
				Help: "Score events dropped because the collector buffer was full.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ScoreRequestsTotal,
		m.ScoreLatency,
		m.CorpusSize,
		m.VocabularySize,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.AnalyticsDroppedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
