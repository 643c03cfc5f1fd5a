// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/metrics"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/store"
)

// FinderConfig tunes the similar-user search.
type FinderConfig struct {
	// MinUserHistory is the record count below which the search refuses to run.
	MinUserHistory int

	// SampleActiveUsers caps how many candidates each sampling stage draws.
	SampleActiveUsers int

	// MinCandidates is the pool size under which the next wider stage runs.
	MinCandidates int

	// RecentWindow and WideWindow bound the first two sampling stages.
	RecentWindow time.Duration
	WideWindow   time.Duration

	// MaxLimit caps the list length a caller may request.
	MaxLimit int

	// CacheTTL is the lifetime of a cached similar-user list.
	CacheTTL time.Duration
}

// DefaultFinderConfig returns the standard search settings.
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		MinUserHistory:    5,
		SampleActiveUsers: 100,
		MinCandidates:     10,
		RecentWindow:      30 * 24 * time.Hour,
		WideWindow:        90 * 24 * time.Hour,
		MaxLimit:          50,
		CacheTTL:          24 * time.Hour,
	}
}

// Finder samples candidate users, scores them through the engine, and caches
// the ranked result.
type Finder struct {
	engine    *Engine
	history   store.WatchHistoryStore
	directory store.UserDirectory
	cache     *cache.Cache
	cfg       FinderConfig
	logger    zerolog.Logger
}

// NewFinder wires a finder from its collaborators.
func NewFinder(engine *Engine, history store.WatchHistoryStore, directory store.UserDirectory, c *cache.Cache, cfg FinderConfig) *Finder {
	def := DefaultFinderConfig()
	if cfg.MinUserHistory <= 0 {
		cfg.MinUserHistory = def.MinUserHistory
	}
	if cfg.SampleActiveUsers <= 0 {
		cfg.SampleActiveUsers = def.SampleActiveUsers
	}
	if cfg.MinCandidates <= 0 {
		cfg.MinCandidates = def.MinCandidates
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = def.RecentWindow
	}
	if cfg.WideWindow <= 0 {
		cfg.WideWindow = def.WideWindow
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	return &Finder{
		engine:    engine,
		history:   history,
		directory: directory,
		cache:     c,
		cfg:       cfg,
		logger:    logging.WithComponent("similar-users"),
	}
}

// FindSimilarUsers returns the ranked similar users for userID.
//
// A cached list, when present and non-empty, wins unconditionally over
// recomputation. Otherwise candidates are sampled through a staged fallback
// (recent activity, wider activity, whole directory), scored one by one, and
// the surviving matches are cached whole.
func (f *Finder) FindSimilarUsers(ctx context.Context, userID string, limit int, useCache bool) (*models.SimilarUsersResult, error) {
	start := time.Now()
	defer func() {
		metrics.SimilaritySearchDuration.Observe(time.Since(start).Seconds())
	}()

	count, err := f.history.CountByUser(ctx, userID)
	if err != nil {
		metrics.SimilarUserSearches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to count watch history for %s: %w", userID, err)
	}
	if count < f.cfg.MinUserHistory {
		metrics.SimilarUserSearches.WithLabelValues("insufficient_history").Inc()
		return &models.SimilarUsersResult{
			Users: []models.SimilarUserMatch{},
			Message: fmt.Sprintf("Not enough watch history to find similar users. Add at least %d titles to your lists.",
				f.cfg.MinUserHistory),
		}, nil
	}

	if limit <= 0 || limit > f.cfg.MaxLimit {
		limit = f.cfg.MaxLimit
	}

	if useCache {
		if cached, ok := f.cache.Get(cache.SimilarUsersKey(userID)); ok {
			if list, ok := cached.([]models.SimilarUser); ok && len(list) > 0 {
				metrics.CacheOperations.WithLabelValues("similar_users", "hit").Inc()
				metrics.SimilarUserSearches.WithLabelValues("cached").Inc()
				return f.enrich(ctx, list, limit, true)
			}
		}
		metrics.CacheOperations.WithLabelValues("similar_users", "miss").Inc()
	}

	candidates, err := f.sampleCandidates(ctx, userID)
	if err != nil {
		metrics.SimilarUserSearches.WithLabelValues("error").Inc()
		return nil, err
	}

	var matches []models.SimilarUser
	for _, candidateID := range candidates {
		result, err := f.engine.ComputeSimilarity(ctx, userID, candidateID, false)
		if err != nil {
			// One bad candidate never aborts the batch.
			f.logger.Warn().Err(err).
				Str("user_id", userID).
				Str("candidate_id", candidateID).
				Msg("Similarity computation failed, skipping candidate")
			continue
		}
		if IsSimilar(result.OverallMatch) {
			matches = append(matches, models.SimilarUser{
				UserID:       candidateID,
				OverallMatch: result.OverallMatch,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].OverallMatch > matches[j].OverallMatch
	})

	if len(matches) > 0 {
		f.cache.SetWithTTL(cache.SimilarUsersKey(userID), matches, f.cfg.CacheTTL)
	}

	metrics.SimilarUserSearches.WithLabelValues("computed").Inc()
	f.logger.Info().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("Similar user search completed")

	return f.enrich(ctx, matches, limit, false)
}

// sampleCandidates builds the candidate pool with an explicit ordered
// fallback: recent activity, wider activity, then the whole directory with a
// minimum history count. Each stage runs only when the previous one came up
// short.
func (f *Finder) sampleCandidates(ctx context.Context, userID string) ([]string, error) {
	now := time.Now()

	candidates, err := f.history.ActiveUserIDs(ctx, userID, now.Add(-f.cfg.RecentWindow), f.cfg.SampleActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to sample recent users: %w", err)
	}
	if len(candidates) >= f.cfg.MinCandidates {
		return dedupe(candidates), nil
	}

	candidates, err = f.history.ActiveUserIDs(ctx, userID, now.Add(-f.cfg.WideWindow), f.cfg.SampleActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to sample wide-window users: %w", err)
	}
	if len(candidates) >= f.cfg.MinCandidates {
		return dedupe(candidates), nil
	}

	summaries, err := f.directory.List(ctx, userID, f.cfg.MinUserHistory, f.cfg.SampleActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory users: %w", err)
	}
	ids := make([]string, 0, len(summaries))
	for _, u := range summaries {
		ids = append(ids, u.ID)
	}
	return dedupe(ids), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// enrich converts ranked matches to display form: match as a percentage with
// one decimal, plus watch count and membership date from one batch directory
// lookup.
func (f *Finder) enrich(ctx context.Context, matches []models.SimilarUser, limit int, fromCache bool) (*models.SimilarUsersResult, error) {
	if len(matches) > limit {
		matches = matches[:limit]
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.UserID)
	}
	summaries, err := f.directory.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich similar users: %w", err)
	}

	users := make([]models.SimilarUserMatch, 0, len(matches))
	for _, m := range matches {
		match := models.SimilarUserMatch{
			UserID:       m.UserID,
			MatchPercent: math.Round(m.OverallMatch*100*10) / 10,
		}
		if summary, ok := summaries[m.UserID]; ok {
			match.WatchCount = summary.RecordCount
			match.MemberSince = summary.MemberSince
		}
		users = append(users, match)
	}

	result := &models.SimilarUsersResult{Users: users, FromCache: fromCache}
	if len(users) == 0 {
		result.Message = "No similar users found yet. Check back as more users join."
	}
	return result, nil
}
