// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package models

import "time"

// RecommendationFilters narrows the candidate pool for a random pick.
// Unknown values are normalized away rather than rejected; an empty filter
// set means "anything from the selected lists".
type RecommendationFilters struct {
	// ContentTypes is a subset of {movie, tv, anime}.
	ContentTypes []string `json:"content_types"`

	// Lists is a subset of {want, watched}. "watched" expands to the
	// watched, rewatched, and dropped statuses.
	Lists []string `json:"lists"`

	// MinRating/MaxRating bound the user's own rating; only meaningful when
	// Lists includes "watched".
	MinRating *float64 `json:"min_rating,omitempty"`
	MaxRating *float64 `json:"max_rating,omitempty"`

	// YearFrom/YearTo bound the release year. Content whose year cannot be
	// parsed is never excluded by this filter.
	YearFrom *int `json:"year_from,omitempty"`
	YearTo   *int `json:"year_to,omitempty"`

	// GenreIDs restricts candidates to content tagged with any listed genre.
	GenreIDs []int `json:"genre_ids,omitempty"`
}

// RecommendedContent is the display payload for a selected candidate.
type RecommendedContent struct {
	ContentID   int64     `json:"content_id"`
	MediaType   MediaType `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
	Genres      []Genre   `json:"genres"`
	// UserRating and WatchCount come from a fresh store lookup, not from the
	// possibly stale enrichment pass.
	UserRating *float64 `json:"user_rating,omitempty"`
	WatchCount int      `json:"watch_count"`
	// VoteCount is the number of stored rating submissions for this content,
	// used as a display proxy.
	VoteCount   int    `json:"vote_count"`
	StatusLabel string `json:"status_label"` // want, watched, rewatched, or dropped
}

// RecommendationResult is the structured outcome of one selection attempt.
// Movie is nil when nothing could be selected; Message then distinguishes an
// empty source list from an exhausted filter pipeline.
type RecommendationResult struct {
	Movie   *RecommendedContent `json:"movie"`
	Message string              `json:"message,omitempty"`
}

// RecommendationContext records how a recommendation was produced.
type RecommendationContext struct {
	Filters         RecommendationFilters `json:"filters"`
	Position        int                   `json:"position"` // chosen index in the candidate pool
	CandidatesCount int                   `json:"candidates_count"`
	UserStatus      string                `json:"user_status"`
}

// RecommendationLogEntry is one append-only audit record of a shown
// recommendation. Entries double as the cooldown source: content logged
// within the cooldown window is excluded from reselection.
type RecommendationLogEntry struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	ContentID int64                 `json:"content_id"`
	MediaType MediaType             `json:"media_type"`
	Algorithm string                `json:"algorithm"`
	Action    string                `json:"action"`
	Context   RecommendationContext `json:"context"`
	ShownAt   time.Time             `json:"shown_at"`
}

// ContentKey identifies a (content, media type) pair for cooldown exclusion.
type ContentKey struct {
	ContentID int64     `json:"content_id"`
	MediaType MediaType `json:"media_type"`
}
