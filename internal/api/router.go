package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/agentindex/internal/api/middleware"
	"github.com/eldtechnologies/agentindex/internal/handlers"
	"github.com/eldtechnologies/agentindex/internal/store"
)

// RouterConfig carries the settings the router needs beyond its handlers.
type RouterConfig struct {
	RateLimitWhitelist []string
	AutoBlockEnabled   bool
}

// NewRouter creates and configures the HTTP router. Rate limiting is only
// installed when redisStore is non-nil.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, redisStore *store.RedisStore, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ReadOnly)
	r.Use(middleware.ValidateRequest)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	if client := redisStore.Client(); client != nil {
		limiter := middleware.NewRateLimiter(client, logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
		r.Use(limiter.Middleware)
	} else {
		logger.Warn().Msg("redis not configured, rate limiting disabled")
	}

	// Browsers call the listing directly from the explorer front end
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/api", h.Root)
	r.Get("/health", h.Health)

	r.Get("/api/agents", h.ListAgents)
	r.Get("/api/agents/{id}", h.GetAgent)

	return r
}
