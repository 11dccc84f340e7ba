// Package main provides the demo frontend service: a thin HTTP surface over
// the client-side recommendation pipeline.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/TechNxt05/Amazon-Recommendation-System/internal/backend"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/cache"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/config"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/eventlog"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/observability"
	"github.com/TechNxt05/Amazon-Recommendation-System/internal/recommend"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "recsys-api",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("backend", cfg.Backend.BaseURL).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting recommendation demo frontend")

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	})

	trustCache := newTrustCache(cfg, logger)
	defer trustCache.Close()

	events := eventlog.NewSideChannel(client, logger, cfg.Backend.Timeout)

	orch := recommend.NewOrchestrator(client, events, logger, recommend.OrchestratorConfig{
		PageSize:         cfg.Query.PageSize,
		DebounceInterval: cfg.Query.DebounceInterval,
	})
	defer orch.Close()

	trust := recommend.NewTrustFetcher(client, trustCache, cfg.Cache.TTL, events)

	router := NewRouter(logger, cfg, orch, trust, client, events)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		_ = srv.Close()
	}
}

// newTrustCache builds the configured cache, falling back to memory when
// Redis is unreachable so the demo stays usable.
func newTrustCache(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		rc, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			return rc
		}
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory trust cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}
