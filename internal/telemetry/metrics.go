package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for AI requests.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)

// Metrics owns the dashboard's Prometheus collectors and the registry they
// live in. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	datasetsGenerated prometheus.Counter
	aiRequests        *prometheus.CounterVec
	aiDuration        *prometheus.HistogramVec
	insightsCache     *prometheus.CounterVec
	lowStockItems     prometheus.Gauge
}

// New registers every collector under prefix in a fresh registry, together
// with the Go runtime and process collectors.
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		datasetsGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_datasets_generated_total",
				Help: "Total number of synthetic datasets generated",
			},
		),
		aiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ai_requests_total",
				Help: "Total number of AI requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		aiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_ai_request_duration_seconds",
				Help:    "Duration of upstream AI calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"kind"},
		),
		insightsCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_insights_cache_total",
				Help: "Insights cache lookups by result",
			},
			[]string{"result"},
		),
		lowStockItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_low_stock_items",
				Help: "Inventory items at or below their reorder point in the current dataset",
			},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request. route is the chi route pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, s).Inc()
	m.httpDuration.WithLabelValues(method, route, s).Observe(elapsed.Seconds())
}

// DatasetGenerated counts a regeneration and publishes its low-stock count.
func (m *Metrics) DatasetGenerated(lowStock int) {
	if m == nil {
		return
	}
	m.datasetsGenerated.Inc()
	m.lowStockItems.Set(float64(lowStock))
}

// ObserveAI records one AI call. kind is "chat" or "insights".
func (m *Metrics) ObserveAI(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aiRequests.WithLabelValues(kind, outcome).Inc()
	m.aiDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// InsightsCacheHit records a cache lookup result.
func (m *Metrics) InsightsCacheHit(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.insightsCache.WithLabelValues(result).Inc()
}
