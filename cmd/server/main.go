// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package main is the entry point for the TasteMatch server.
//
// TasteMatch profiles each user's movie and TV taste from their watch
// history, scores pairwise taste similarity, finds the most similar users,
// and serves random recommendations filtered by the user's own lists.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Stores: Watch history, user directory, and the recommendation audit log
//  3. Metadata: TMDB client behind a circuit breaker, rate limiter, and cache
//  4. Engine: Taste map aggregator, similarity engine, similar-user finder,
//     and the random recommendation selector
//  5. HTTP Server: REST API under /api/v1 plus /health and /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables with the TASTEMATCH_ prefix
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Example:
//
//	export TASTEMATCH_SERVER_PORT=8080
//	export TASTEMATCH_METADATA_API_KEY=your-tmdb-key
//	export TASTEMATCH_RECOMMEND_LOG_PATH=/var/lib/tastematch/reclog
//	./tastematch
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout)
//   - Closes the recommendation log
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tastematch/internal/api"
	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/config"
	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/metadata"
	"github.com/tomtom215/tastematch/internal/selector"
	"github.com/tomtom215/tastematch/internal/similarity"
	"github.com/tomtom215/tastematch/internal/store"
	"github.com/tomtom215/tastematch/internal/tastemap"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("metadata_base_url", cfg.Metadata.BaseURL).
		Int("port", cfg.Server.Port).
		Msg("Starting TasteMatch")

	c := cache.New(cfg.Cache.TasteMapTTL)

	memStore := store.NewMemoryStore()

	// Badger-backed recommendation log when a path is configured, in-memory
	// otherwise. The in-memory log still enforces the cooldown window within
	// a single process lifetime.
	var recLog store.RecommendationLog
	if cfg.Recommend.LogPath != "" {
		badgerLog, err := store.OpenBadgerRecommendationLog(cfg.Recommend.LogPath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Recommend.LogPath).Msg("Failed to open recommendation log")
		}
		recLog = badgerLog
		logging.Info().Str("path", cfg.Recommend.LogPath).Msg("Recommendation log opened")
	} else {
		recLog = store.NewMemoryRecommendationLog()
		logging.Info().Msg("Recommendation log is in-memory (set TASTEMATCH_RECOMMEND_LOG_PATH to persist)")
	}
	defer func() {
		if err := recLog.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing recommendation log")
		}
	}()

	provider := metadata.NewCachedProvider(
		metadata.NewTMDBClient(cfg.Metadata),
		c,
		cfg.Cache.MetadataTTL,
	)

	aggregator := tastemap.NewAggregator(memStore, provider, c, tastemap.Config{
		RecordCap:  cfg.Similarity.ProfileRecordCap,
		BatchSize:  cfg.Metadata.BatchSize,
		BatchDelay: cfg.Metadata.BatchDelay,
		TTL:        cfg.Cache.TasteMapTTL,
	})

	engine := similarity.NewEngine(aggregator, memStore, c, cfg.Cache.SimilarityTTL)

	finder := similarity.NewFinder(engine, memStore, memStore, c, similarity.FinderConfig{
		MinUserHistory:    cfg.Similarity.MinUserHistory,
		SampleActiveUsers: cfg.Similarity.SampleActiveUsers,
		MinCandidates:     cfg.Similarity.MinCandidates,
		RecentWindow:      time.Duration(cfg.Similarity.RecentWindowDays) * 24 * time.Hour,
		WideWindow:        time.Duration(cfg.Similarity.WideWindowDays) * 24 * time.Hour,
		MaxLimit:          cfg.Similarity.MaxLimit,
		CacheTTL:          cfg.Cache.SimilarUsersTTL,
	})

	sel := selector.New(memStore, provider, recLog, selector.Config{
		Cooldown:   time.Duration(cfg.Recommend.CooldownDays) * 24 * time.Hour,
		BatchSize:  cfg.Metadata.BatchSize,
		BatchDelay: cfg.Metadata.BatchDelay,
	})

	handlers := api.NewHandlers(aggregator, engine, finder, sel, c)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers, cfg.Server),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
