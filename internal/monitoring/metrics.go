package monitoring

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "candidate_eval"

// Metrics holds the Prometheus collectors of one server instance
type Metrics struct {
	registry *prometheus.Registry

	requestCount int64
	errorCount   int64
	startTime    time.Time

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	evaluationsRecorded *prometheus.CounterVec
	sharesIssued        prometheus.Counter
	sharesResolved      prometheus.Counter
	rateLimitBlocks     *prometheus.CounterVec
	loginFailures       prometheus.Counter
}

// NewMetrics creates a metrics instance on its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Metrics{
		registry:  registry,
		startTime: time.Now(),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		evaluationsRecorded: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_recorded_total",
			Help:      "Evaluations stored, by prompt",
		}, []string{"prompt"}),
		sharesIssued: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_links_issued_total",
			Help:      "Share links issued",
		}),
		sharesResolved: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_links_resolved_total",
			Help:      "Shared profiles served",
		}),
		rateLimitBlocks: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_blocks_total",
			Help:      "Requests rejected by the rate limiter, by backend",
		}, []string{"backend"}),
		loginFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_failures_total",
			Help:      "Rejected reviewer logins",
		}),
	}
}

// RegisterCacheStats exposes the leaderboard cache counters
func (m *Metrics) RegisterCacheStats(hits, misses, size func() float64) {
	auto := promauto.With(m.registry)
	auto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Leaderboard cache hits",
	}, hits)
	auto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Leaderboard cache misses",
	}, misses)
	auto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Entries currently held in the leaderboard cache",
	}, size)
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	atomic.AddInt64(&m.requestCount, 1)
	if status >= 400 {
		atomic.AddInt64(&m.errorCount, 1)
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) EvaluationRecorded(promptID string) {
	m.evaluationsRecorded.WithLabelValues(promptID).Inc()
}

func (m *Metrics) ShareIssued() {
	m.sharesIssued.Inc()
}

func (m *Metrics) ShareResolved() {
	m.sharesResolved.Inc()
}

func (m *Metrics) RateLimitBlocked(backend string) {
	m.rateLimitBlocks.WithLabelValues(backend).Inc()
}

func (m *Metrics) LoginFailed() {
	m.loginFailures.Inc()
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GetStats returns a summary for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.requestCount)
	errs := atomic.LoadInt64(&m.errorCount)

	errorRate := 0.0
	if requests > 0 {
		errorRate = float64(errs) / float64(requests) * 100
	}

	return map[string]interface{}{
		"requests_total": requests,
		"errors_total":   errs,
		"error_rate":     errorRate,
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
	}
}
