// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/selector"
	"github.com/tomtom215/tastematch/internal/similarity"
	"github.com/tomtom215/tastematch/internal/tastemap"
)

// Handlers bundles the engine components behind HTTP endpoints. Handlers
// only shuttle data; every decision lives in the components.
type Handlers struct {
	aggregator *tastemap.Aggregator
	engine     *similarity.Engine
	finder     *similarity.Finder
	selector   *selector.Selector
	cache      *cache.Cache
	startedAt  time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(aggregator *tastemap.Aggregator, engine *similarity.Engine, finder *similarity.Finder, sel *selector.Selector, c *cache.Cache) *Handlers {
	return &Handlers{
		aggregator: aggregator,
		engine:     engine,
		finder:     finder,
		selector:   sel,
		cache:      c,
		startedAt:  time.Now(),
	}
}

// GetTasteMap handles GET /api/v1/users/{userID}/taste-map.
func (h *Handlers) GetTasteMap(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("userID is required")
		return
	}

	tm, err := h.aggregator.Get(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("Taste map computation failed")
		rw.InternalError("Failed to compute taste map")
		return
	}

	rw.Success(tm)
}

// GetSimilarUsers handles GET /api/v1/users/{userID}/similar-users.
// Query parameters: limit (default 10), cache (default true).
func (h *Handlers) GetSimilarUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("userID is required")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	useCache := r.URL.Query().Get("cache") != "false"

	result, err := h.finder.FindSimilarUsers(r.Context(), userID, limit, useCache)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("Similar user search failed")
		rw.InternalError("Failed to find similar users")
		return
	}

	rw.Success(result)
}

// GetSimilarity handles GET /api/v1/users/{userID}/similarity/{otherID}.
// Query parameter patterns=true adds the rating-pattern breakdown.
func (h *Handlers) GetSimilarity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userA := chi.URLParam(r, "userID")
	userB := chi.URLParam(r, "otherID")
	if userA == "" || userB == "" {
		rw.BadRequest("both user IDs are required")
		return
	}

	includePatterns := r.URL.Query().Get("patterns") == "true"

	result, err := h.engine.ComputeSimilarity(r.Context(), userA, userB, includePatterns)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("user_a", userA).
			Str("user_b", userB).
			Msg("Similarity computation failed")
		rw.InternalError("Failed to compute similarity")
		return
	}

	rw.Success(result)
}

// PostRandomRecommendation handles
// POST /api/v1/users/{userID}/recommendations/random with filters in the
// body. A malformed body is normalized to empty filters, not rejected.
func (h *Handlers) PostRandomRecommendation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("userID is required")
		return
	}

	var filters models.RecommendationFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Unparseable filter body, using defaults")
		filters = models.RecommendationFilters{}
	}

	result, err := h.selector.Pick(r.Context(), userID, filters)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("Recommendation selection failed")
		rw.InternalError("Failed to select a recommendation")
		return
	}

	rw.Success(result)
}

// GetHealth handles GET /health.
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats := h.cache.GetStats()
	rw.Success(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"cache": map[string]interface{}{
			"keys":     stats.TotalKeys,
			"hit_rate": h.cache.HitRate(),
		},
	})
}
