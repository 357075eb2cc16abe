package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentindex_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentindex_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ListRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentindex_list_requests_total",
			Help: "Total agent list and search requests",
		},
		[]string{"mode", "protocol"}, // mode: "list" or "search"
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentindex_search_queries_total",
			Help: "Total name search queries",
		},
	)

	DetailLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentindex_detail_lookups_total",
			Help: "Total agent detail lookups",
		},
		[]string{"result"}, // "found", "not_found", "no_stats", "error"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentindex_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentindex_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	SubgraphLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentindex_subgraph_latency_seconds",
			Help:    "Subgraph query latency",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	SubgraphErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentindex_subgraph_errors_total",
			Help: "Total failed subgraph queries",
		},
		[]string{"operation"},
	)

	RedisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agentindex_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)
)
