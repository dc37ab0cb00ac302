package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpOnce            sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
)

func initHTTPMetrics() {
	httpOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_requests_total",
			Help: "Total HTTP requests served, by method/path/status.",
		}, []string{"method", "path", "status"})

		httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by method/path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})
	})
}

// RecordHTTPRequest records one completed HTTP request's outcome and
// latency.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	initHTTPMetrics()
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// StatsSource is the set of non-blocking accessors registry.Core
// exposes (spec.md §4.7). Metrics is an outer layer: the core itself
// never imports prometheus/client_golang, since the export format is
// explicitly out of the core's scope.
type StatsSource interface {
	PoolSize() int32
	IdleConnections() int32
	IsClosed() bool
	CacheHits() uint64
	CacheMisses() uint64
	CacheHitRate() float64
}

// RegisterCoreMetrics wires GaugeFuncs over src's accessors, so every
// Prometheus scrape reads the core's live counters directly rather
// than a periodically-refreshed copy.
func RegisterCoreMetrics(src StatsSource) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "registry_pool_size",
		Help: "Configured maximum number of pooled database connections.",
	}, func() float64 { return float64(src.PoolSize()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "registry_pool_idle_connections",
		Help: "Current number of idle pooled database connections.",
	}, func() float64 { return float64(src.IdleConnections()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "registry_pool_closed",
		Help: "1 once the connection pool has been drained and closed.",
	}, func() float64 {
		if src.IsClosed() {
			return 1
		}
		return 0
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "registry_cache_hits_total",
		Help: "Cumulative LRU cache hits.",
	}, func() float64 { return float64(src.CacheHits()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "registry_cache_misses_total",
		Help: "Cumulative LRU cache misses.",
	}, func() float64 { return float64(src.CacheMisses()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "registry_cache_hit_rate",
		Help: "Cache hits * 100 / (hits + misses), 0 when both are zero.",
	}, func() float64 { return src.CacheHitRate() })
}

// Handler returns an HTTP handler serving the registered metrics in
// the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
