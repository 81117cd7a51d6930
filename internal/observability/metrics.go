package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis failures by operation. Redis is optional so
	// these are degraded paths, not request failures.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookfeed_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// CacheLookups counts feed cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookfeed_cache_lookups_total",
		Help: "Total number of cache lookups by key family and result",
	}, []string{"key", "result"})

	// MediaUploads counts upload attempts by backend and outcome.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookfeed_media_uploads_total",
		Help: "Total number of image uploads by backend and outcome",
	}, []string{"backend", "outcome"})

	// ChatRequests counts assistant calls by outcome
	// (ok, not_configured, invalid, upstream_auth_error, upstream_rate_limit, upstream_error).
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookfeed_chat_requests_total",
		Help: "Total number of chat assistant requests by outcome",
	}, []string{"outcome"})

	ChatLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cookfeed_chat_upstream_latency_seconds",
		Help:    "Latency of completion API calls in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	})

	// PostReactions counts reactions applied to posts.
	PostReactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cookfeed_post_reactions_total",
		Help: "Total number of reactions recorded",
	})

	// AuthEvents counts authentication attempts by action and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookfeed_auth_events_total",
		Help: "Total number of authentication events by action and outcome",
	}, []string{"action", "outcome"})

	// SchemaMigrations counts additive column migrations by status.
	SchemaMigrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookfeed_schema_migrations_total",
		Help: "Additive schema migrations by status",
	}, []string{"status"})
)
