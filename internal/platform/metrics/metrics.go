package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// ProviderRequests counts outbound routing provider calls by kind (matrix|route) and outcome.
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routing_provider_requests_total", Help: "Routing provider calls by kind and outcome."},
		[]string{"kind", "outcome"},
	)
	// CacheLookups counts routing cache lookups by result (hit|miss).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routing_cache_lookups_total", Help: "Routing response cache lookups."},
		[]string{"result"},
	)
	// CacheEvictions counts entries dropped by the bounded routing cache.
	CacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "routing_cache_evictions_total", Help: "Routing response cache evictions."},
	)
	// Plans counts planning invocations by outcome (ok|error) and metadata completeness.
	Plans = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "consolidation_plans_total", Help: "Consolidation planning calls."},
		[]string{"outcome", "meta"},
	)
	// OpDuration records timed operations (see obs.Time) in seconds.
	OpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Duration of instrumented operations.", Buckets: prometheus.DefBuckets},
		[]string{"op", "outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(CacheEvictions)
		Registry.MustRegister(Plans)
		Registry.MustRegister(OpDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
