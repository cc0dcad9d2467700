// Package metrics exposes Prometheus instrumentation for the HTTP API,
// the preference cache and the recommendation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider records application metrics.
type Provider interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStage(stage string, duration time.Duration)
	IncStageErrors(stage string)
	Handler() http.Handler
}

type prometheusProvider struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
}

// New returns a Prometheus-backed Provider with its own registry, or a
// no-op Provider when enabled is false.
func New(enabled bool) Provider {
	if !enabled {
		return noopProvider{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &prometheusProvider{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "muji_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "muji_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "muji_cache_hits_total",
			Help: "Total number of preference cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "muji_cache_misses_total",
			Help: "Total number of preference cache misses",
		}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "muji_pipeline_stage_duration_seconds",
			Help:    "Duration of recommendation pipeline stages in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),

		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "muji_pipeline_stage_errors_total",
			Help: "Total number of failed recommendation pipeline stages",
		}, []string{"stage"}),
	}
}

func (m *prometheusProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *prometheusProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *prometheusProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *prometheusProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *prometheusProvider) ObserveStage(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *prometheusProvider) IncStageErrors(stage string) {
	m.stageErrors.WithLabelValues(stage).Inc()
}

func (m *prometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// noopProvider is used when metrics are disabled.
type noopProvider struct{}

func (noopProvider) IncRequestsTotal(string, int)                 {}
func (noopProvider) ObserveRequestDuration(string, time.Duration) {}
func (noopProvider) IncCacheHits()                                {}
func (noopProvider) IncCacheMisses()                              {}
func (noopProvider) ObserveStage(string, time.Duration)           {}
func (noopProvider) IncStageErrors(string)                        {}
func (noopProvider) Handler() http.Handler                        { return http.NotFoundHandler() }
