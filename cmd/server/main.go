package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/agentindex/internal/api"
	"github.com/eldtechnologies/agentindex/internal/config"
	"github.com/eldtechnologies/agentindex/internal/handlers"
	"github.com/eldtechnologies/agentindex/internal/registry"
	"github.com/eldtechnologies/agentindex/internal/store"
	"github.com/eldtechnologies/agentindex/internal/subgraph"
	"github.com/eldtechnologies/agentindex/internal/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:      cfg.TracingEnabled(),
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   cfg.TraceSampleRate,
		ServiceName:  "agentindex",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing setup failed")
	}

	client, err := subgraph.NewClient(subgraph.Config{
		Endpoint: cfg.SubgraphURL,
		APIKey:   cfg.SubgraphAPIKey,
		Timeout:  cfg.SubgraphTimeout,
	}, logger, tp.Tracer())
	if err != nil {
		logger.Fatal().Err(err).Msg("subgraph client setup failed")
	}

	// Redis is optional outside production
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	reg := registry.New(client, registry.Options{
		MaxPageSize:   cfg.MaxPageSize,
		FeedbackLimit: cfg.FeedbackLimit,
	})
	h := handlers.NewHandler(reg, client, redisStore, logger)
	router := api.NewRouter(logger, h, redisStore, api.RouterConfig{
		RateLimitWhitelist: cfg.RateLimitWhitelist,
		AutoBlockEnabled:   cfg.AutoBlockEnabled,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.SubgraphTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("subgraph", client.Endpoint()).
			Bool("tracing", tp.Enabled()).
			Msg("starting agentindex server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracer shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
