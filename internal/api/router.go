// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tastematch/internal/config"
)

// NewRouter assembles the chi router with the standard middleware stack.
func NewRouter(h *Handlers, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, cfg.RateLimitWindow))
	}

	r.Get("/health", h.GetHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/taste-map", h.GetTasteMap)
			r.Get("/similar-users", h.GetSimilarUsers)
			r.Get("/similarity/{otherID}", h.GetSimilarity)
			r.Post("/recommendations/random", h.PostRandomRecommendation)
		})
	})

	return r
}
