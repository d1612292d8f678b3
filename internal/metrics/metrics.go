package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors for the segment API. Registered once at startup via Init.
var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sponsorblock_submissions_total",
			Help: "Total description segments submitted, by category.",
		},
		[]string{"category"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sponsorblock_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sponsorblock_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorblock_cache_hits_total",
			Help: "Total Redis segment cache hits.",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorblock_cache_misses_total",
			Help: "Total Redis segment cache misses.",
		},
	)

	CacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorblock_cache_invalidations_total",
			Help: "Total cache invalidations triggered by writes.",
		},
	)
)

// Init registers all collectors, plus live DB pool gauges when a pool is
// provided. Call once at startup.
func Init(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		SubmissionsTotal,
		RequestDuration,
		RequestsInFlight,
		CacheHits,
		CacheMisses,
		CacheInvalidations,
	)

	if pool != nil {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "sponsorblock_db_connection_pool_active",
					Help: "Number of active database connections.",
				},
				func() float64 { return float64(pool.Stat().AcquiredConns()) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "sponsorblock_db_connection_pool_idle",
					Help: "Number of idle database connections.",
				},
				func() float64 { return float64(pool.Stat().IdleConns()) },
			),
		)
	}
}
