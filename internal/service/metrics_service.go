package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-backoffice/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	dbQueryDuration  *prometheus.HistogramVec
	statusChanges    *prometheus.CounterVec
	staleResponses   prometheus.Counter
	searchSuperseded prometheus.Counter
	eventsPublished  *prometheus.CounterVec
	consoleSessions  prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of payment review ledger queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_changes_total",
		Help: "Confirmed payment status changes by target status",
	}, []string{"to"})

	staleResponses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_board_stale_responses_total",
		Help: "Payments page responses discarded because a newer request was issued",
	})

	searchSuperseded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "student_search_superseded_total",
		Help: "Student searches dropped because newer input arrived during the quiet period",
	})

	eventsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_published_total",
		Help: "Payment review events handed to the broker by outcome",
	}, []string{"outcome"})

	consoleSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "admin_console_sessions",
		Help: "Admin console sessions currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		dbQueryDuration, statusChanges, staleResponses, searchSuperseded, eventsPublished, consoleSessions, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		dbQueryDuration:  dbQueryDuration,
		statusChanges:    statusChanges,
		staleResponses:   staleResponses,
		searchSuperseded: searchSuperseded,
		eventsPublished:  eventsPublished,
		consoleSessions:  consoleSessions,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records ledger query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordStatusChange counts a confirmed payment status change.
func (m *MetricsService) RecordStatusChange(to models.PaymentStatus) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(string(to)).Inc()
}

// RecordStaleResponse counts a discarded out-of-order page response.
func (m *MetricsService) RecordStaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

// RecordSearchSuperseded counts a student search dropped before firing.
func (m *MetricsService) RecordSearchSuperseded() {
	if m == nil {
		return
	}
	m.searchSuperseded.Inc()
}

// RecordEventPublish counts a payment event publish attempt.
func (m *MetricsService) RecordEventPublish(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsPublished.WithLabelValues(outcome).Inc()
}

// SetConsoleSessions reports the number of live console sessions.
func (m *MetricsService) SetConsoleSessions(n int) {
	if m == nil {
		return
	}
	m.consoleSessions.Set(float64(n))
}
