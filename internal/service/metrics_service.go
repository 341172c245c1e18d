package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-wellbeing-api/internal/models"
)

// MetricsService owns the Prometheus registry of the API and keeps running totals
// for the JSON snapshot served at /system/metrics.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec

	cacheLookups  *prometheus.CounterVec
	cacheLatency  *prometheus.HistogramVec
	cacheHitRatio prometheus.Gauge

	dbDuration *prometheus.HistogramVec

	signalFetches   *prometheus.CounterVec
	signalDuration  *prometheus.HistogramVec
	insightsEmitted *prometheus.CounterVec
	reports         prometheus.Counter

	totals metricTotals
}

type metricTotals struct {
	requests, requestNanos atomic.Uint64
	cacheHits, cacheMisses atomic.Uint64
	dbQueries, dbNanos     atomic.Uint64
	signalFetches          atomic.Uint64
	signalFailures         atomic.Uint64
	reports                atomic.Uint64
}

// NewMetricsService registers the API collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &MetricsService{
		registry: registry,
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		cacheLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cache_operation_seconds",
			Help:    "Latency of cache reads and writes",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op"}),
		cacheHitRatio: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		dbDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		signalFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_fetch_total",
			Help: "Wellbeing signal fetches by source and outcome",
		}, []string{"signal", "outcome"}),
		signalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signal_fetch_duration_seconds",
			Help:    "Duration of wellbeing signal fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"signal"}),
		insightsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_emitted_total",
			Help: "Insights produced by type and level",
		}, []string{"type", "level"}),
		reports: factory.NewCounter(prometheus.CounterOpts{
			Name: "insight_reports_total",
			Help: "Insight reports assembled",
		}),
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Number of live goroutines",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request. path must be a route template.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	m.totals.requests.Add(1)
	m.totals.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache read and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.totals.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.totals.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(ratio(m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()))
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing under a fixed query label.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.totals.dbQueries.Add(1)
	m.totals.dbNanos.Add(uint64(duration.Nanoseconds()))
}

// ObserveSignalFetch records the outcome and latency of one wellbeing signal fetch.
func (m *MetricsService) ObserveSignalFetch(signal string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.totals.signalFailures.Add(1)
	}
	m.totals.signalFetches.Add(1)
	m.signalFetches.WithLabelValues(signal, outcome).Inc()
	m.signalDuration.WithLabelValues(signal).Observe(duration.Seconds())
}

// RecordReport counts an assembled report and the insights it carried.
func (m *MetricsService) RecordReport(insights []models.Insight) {
	if m == nil {
		return
	}
	m.reports.Inc()
	m.totals.reports.Add(1)
	for _, insight := range insights {
		m.insightsEmitted.WithLabelValues(string(insight.Type), string(insight.Level)).Inc()
	}
}

// Snapshot returns the running totals.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	t := &m.totals
	hits, misses := t.cacheHits.Load(), t.cacheMisses.Load()
	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            t.requests.Load(),
		AverageRequestDurationMs: averageMillis(t.requestNanos.Load(), t.requests.Load()),
		DBQueryCount:             t.dbQueries.Load(),
		AverageDBQueryDurationMs: averageMillis(t.dbNanos.Load(), t.dbQueries.Load()),
		SignalFetches:            t.signalFetches.Load(),
		SignalFailures:           t.signalFailures.Load(),
		ReportsGenerated:         t.reports.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
