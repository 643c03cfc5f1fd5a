// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package selector assembles recommendation candidates from a user's lists,
// applies the filter pipeline, and picks one at random.
package selector

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/metadata"
	"github.com/tomtom215/tastematch/internal/metrics"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/store"
)

// AlgorithmName identifies the selection algorithm in audit log entries.
const AlgorithmName = "random_v1"

// ActionShown is the audit action recorded when a recommendation is returned.
const ActionShown = "shown"

// Anime classification: the animation genre tag combined with Japanese
// original language.
const (
	animeGenreID  = 16
	animeLanguage = "ja"
)

// Outcome messages. The two empty outcomes are deliberately distinct so
// callers can render different guidance.
const (
	MsgListEmpty = "Your selected list is empty. Add some titles first."
	MsgNoResults = "No recommendations match your filters. Try relaxing them."
)

// Config tunes selection.
type Config struct {
	// Cooldown excludes content shown within this window from reselection.
	Cooldown time.Duration

	// BatchSize and BatchDelay shape the metadata enrichment of candidates.
	BatchSize  int
	BatchDelay time.Duration
}

// DefaultConfig returns the standard selection settings.
func DefaultConfig() Config {
	return Config{
		Cooldown:   7 * 24 * time.Hour,
		BatchSize:  5,
		BatchDelay: 200 * time.Millisecond,
	}
}

// Selector picks one recommendation from a user's lists.
type Selector struct {
	history  store.WatchHistoryStore
	provider metadata.Provider
	recLog   store.RecommendationLog
	cfg      Config
	logger   zerolog.Logger

	// randIntn is swappable for deterministic tests.
	randIntn func(n int) int
}

// New wires a selector from its collaborators.
func New(history store.WatchHistoryStore, provider metadata.Provider, recLog store.RecommendationLog, cfg Config) *Selector {
	def := DefaultConfig()
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	return &Selector{
		history:  history,
		provider: provider,
		recLog:   recLog,
		cfg:      cfg,
		logger:   logging.WithComponent("selector"),
		randIntn: rand.Intn,
	}
}

// candidate is a record that survived enrichment, carrying its metadata and
// the anime classification derived from it.
type candidate struct {
	record models.WatchRecord
	meta   *models.ContentMetadata
	anime  bool
}

// Pick selects one recommendation for the user, or returns a structured
// empty outcome. The pipeline order is fixed: load lists, classify content
// type, apply cooldown, rating, year, and genre filters, then pick uniformly
// at random and log the result.
func (s *Selector) Pick(ctx context.Context, userID string, filters models.RecommendationFilters) (*models.RecommendationResult, error) {
	filters = normalizeFilters(filters)

	statuses := resolveLists(filters.Lists)
	records, err := s.history.QueryByUser(ctx, userID, statuses)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load watch records for %s: %w", userID, err)
	}
	if len(records) == 0 {
		metrics.Recommendations.WithLabelValues("list_empty").Inc()
		return &models.RecommendationResult{Message: MsgListEmpty}, nil
	}

	enriched := metadata.EnrichRecords(ctx, s.provider, records, s.cfg.BatchSize, s.cfg.BatchDelay)

	candidates := s.classifyAndFilterTypes(enriched, filters.ContentTypes)
	candidates = s.applyCooldown(ctx, userID, candidates)
	candidates = applyRatingFilter(candidates, filters)
	candidates = applyYearFilter(candidates, filters)
	candidates = applyGenreFilter(candidates, filters.GenreIDs)

	if len(candidates) == 0 {
		metrics.Recommendations.WithLabelValues("filtered_out").Inc()
		return &models.RecommendationResult{Message: MsgNoResults}, nil
	}

	position := s.randIntn(len(candidates))
	picked := candidates[position]

	content := s.buildContent(ctx, userID, picked)

	s.appendLogEntry(ctx, userID, picked, filters, position, len(candidates))

	metrics.Recommendations.WithLabelValues("selected").Inc()
	return &models.RecommendationResult{Movie: content}, nil
}

// normalizeFilters replaces unknown values with defaults instead of
// rejecting them: unknown content types and lists are dropped, an empty
// lists set defaults to the want list, and an empty content-type set means
// every type.
func normalizeFilters(filters models.RecommendationFilters) models.RecommendationFilters {
	var types []string
	for _, t := range filters.ContentTypes {
		switch t {
		case "movie", "tv", "anime":
			types = append(types, t)
		}
	}
	filters.ContentTypes = types

	var lists []string
	for _, l := range filters.Lists {
		switch l {
		case "want", "watched":
			lists = append(lists, l)
		}
	}
	if len(lists) == 0 {
		lists = []string{"want"}
	}
	filters.Lists = lists

	return filters
}

// resolveLists expands list names to status sets. The watched list includes
// dropped content on purpose: a user may want to revisit why they dropped
// something.
func resolveLists(lists []string) []models.WatchStatus {
	var statuses []models.WatchStatus
	for _, l := range lists {
		switch l {
		case "want":
			statuses = append(statuses, models.StatusWantToWatch)
		case "watched":
			statuses = append(statuses,
				models.StatusWatched,
				models.StatusRewatched,
				models.StatusDropped)
		}
	}
	return statuses
}

// classifyAndFilterTypes applies anime classification and the content-type
// filter. Anime is animation genre plus Japanese original language;
// classification failures default to the stored type, never to anime.
// A classified-anime record only matches an explicit anime request, and is
// excluded from plain movie/tv requests even when its stored type matches.
func (s *Selector) classifyAndFilterTypes(enriched []metadata.EnrichedRecord, contentTypes []string) []candidate {
	wantAll := len(contentTypes) == 0
	wanted := make(map[string]bool, len(contentTypes))
	for _, t := range contentTypes {
		wanted[t] = true
	}

	var out []candidate
	for _, er := range enriched {
		isAnime := er.Meta != nil &&
			er.Meta.HasGenreID(animeGenreID) &&
			er.Meta.OriginalLanguage == animeLanguage

		include := wantAll
		if !include {
			if isAnime {
				include = wanted["anime"]
			} else {
				include = wanted[string(er.Record.MediaType)]
			}
		}
		if include {
			out = append(out, candidate{record: er.Record, meta: er.Meta, anime: isAnime})
		}
	}
	return out
}

// applyCooldown drops content shown within the cooldown window. A failing
// log query degrades to no exclusions rather than failing the request.
func (s *Selector) applyCooldown(ctx context.Context, userID string, candidates []candidate) []candidate {
	since := time.Now().Add(-s.cfg.Cooldown)
	recent, err := s.recLog.QueryRecent(ctx, userID, since)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Cooldown query failed, skipping exclusions")
		return candidates
	}
	if len(recent) == 0 {
		return candidates
	}

	excluded := make(map[models.ContentKey]struct{}, len(recent))
	for _, key := range recent {
		excluded[key] = struct{}{}
	}

	var out []candidate
	for _, c := range candidates {
		key := models.ContentKey{ContentID: c.record.ContentID, MediaType: c.record.MediaType}
		if _, ok := excluded[key]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// applyRatingFilter bounds the user's own rating. Only meaningful when the
// watched list is selected. An unrated record counts as rated 0, so a
// minimum bound excludes it while a maximum-only bound keeps it.
func applyRatingFilter(candidates []candidate, filters models.RecommendationFilters) []candidate {
	if filters.MinRating == nil && filters.MaxRating == nil {
		return candidates
	}
	if !containsString(filters.Lists, "watched") {
		return candidates
	}

	var out []candidate
	for _, c := range candidates {
		r := 0.0
		if c.record.UserRating != nil {
			r = *c.record.UserRating
		}
		if filters.MinRating != nil && r < *filters.MinRating {
			continue
		}
		if filters.MaxRating != nil && r > *filters.MaxRating {
			continue
		}
		out = append(out, c)
	}
	return out
}

// applyYearFilter bounds the release year parsed from the date's leading
// four digits. Unparseable years never exclude a candidate.
func applyYearFilter(candidates []candidate, filters models.RecommendationFilters) []candidate {
	if filters.YearFrom == nil && filters.YearTo == nil {
		return candidates
	}

	var out []candidate
	for _, c := range candidates {
		year, ok := parseYear(c.meta)
		if !ok {
			out = append(out, c)
			continue
		}
		if filters.YearFrom != nil && year < *filters.YearFrom {
			continue
		}
		if filters.YearTo != nil && year > *filters.YearTo {
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseYear(meta *models.ContentMetadata) (int, bool) {
	if meta == nil || len(meta.ReleaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(meta.ReleaseDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// applyGenreFilter keeps candidates tagged with any requested genre.
// Candidates without metadata cannot prove membership and are excluded.
func applyGenreFilter(candidates []candidate, genreIDs []int) []candidate {
	if len(genreIDs) == 0 {
		return candidates
	}

	var out []candidate
	for _, c := range candidates {
		for _, id := range genreIDs {
			if c.meta.HasGenreID(id) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// buildContent assembles the display payload, refreshing the user's stored
// rating and watch count with a separate lookup since the enriched record
// may be stale.
func (s *Selector) buildContent(ctx context.Context, userID string, picked candidate) *models.RecommendedContent {
	content := &models.RecommendedContent{
		ContentID:   picked.record.ContentID,
		MediaType:   picked.record.MediaType,
		Genres:      []models.Genre{},
		UserRating:  picked.record.UserRating,
		WatchCount:  picked.record.WatchCount,
		StatusLabel: picked.record.Status.DisplayLabel(),
	}
	// Classified anime is displayed as anime; store lookups below still use
	// the stored type.
	if picked.anime {
		content.MediaType = models.MediaTypeAnime
	}
	if picked.meta != nil {
		content.Title = picked.meta.Title
		content.PosterPath = picked.meta.PosterPath
		content.Overview = picked.meta.Overview
		content.ReleaseDate = picked.meta.ReleaseDate
		if picked.meta.Genres != nil {
			content.Genres = picked.meta.Genres
		}
	}

	if fresh, err := s.history.GetRecord(ctx, userID, picked.record.ContentID, picked.record.MediaType); err == nil {
		content.UserRating = fresh.UserRating
		content.WatchCount = fresh.WatchCount
		content.StatusLabel = fresh.Status.DisplayLabel()
	}

	if votes, err := s.history.CountRatings(ctx, picked.record.ContentID, picked.record.MediaType); err == nil {
		content.VoteCount = votes
	}

	return content
}

// appendLogEntry records the shown recommendation. Audit failures are logged
// and never fail the selection.
func (s *Selector) appendLogEntry(ctx context.Context, userID string, picked candidate, filters models.RecommendationFilters, position, candidatesCount int) {
	entry := &models.RecommendationLogEntry{
		UserID:    userID,
		ContentID: picked.record.ContentID,
		MediaType: picked.record.MediaType,
		Algorithm: AlgorithmName,
		Action:    ActionShown,
		Context: models.RecommendationContext{
			Filters:         filters,
			Position:        position,
			CandidatesCount: candidatesCount,
			UserStatus:      picked.record.Status.DisplayLabel(),
		},
		ShownAt: time.Now(),
	}

	if _, err := s.recLog.Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Int64("content_id", picked.record.ContentID).
			Msg("Failed to append recommendation log entry")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
