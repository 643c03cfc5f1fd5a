// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package models

import "time"

// WatchStatus is the lifecycle state of a watch-list entry.
type WatchStatus string

const (
	StatusWantToWatch WatchStatus = "want_to_watch"
	StatusWatched     WatchStatus = "watched"
	StatusRewatched   WatchStatus = "rewatched"
	StatusDropped     WatchStatus = "dropped"
)

// DisplayLabel maps internal status names to the short labels shown to users.
func (s WatchStatus) DisplayLabel() string {
	if s == StatusWantToWatch {
		return "want"
	}
	return string(s)
}

// IsCompleted reports whether the status counts as completed viewing.
// Completed means watched or rewatched; want-to-watch and dropped do not count.
func (s WatchStatus) IsCompleted() bool {
	return s == StatusWatched || s == StatusRewatched
}

// MediaType is the stored content type of a watch record.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"

	// MediaTypeAnime is a display-only classification. Stored records only
	// ever carry movie or tv.
	MediaTypeAnime MediaType = "anime"
)

// WatchRecord is one user's watch-list entry for one piece of content.
// Records are immutable within a single computation pass.
type WatchRecord struct {
	UserID    string      `json:"user_id"`
	ContentID int64       `json:"content_id"` // external provider ID
	MediaType MediaType   `json:"media_type"`
	Status    WatchStatus `json:"status"`
	// UserRating is the user's own 1-10 rating, nil when unrated.
	UserRating *float64 `json:"user_rating,omitempty"`
	// ReferenceRating is the source-provided community rating, always present.
	ReferenceRating float64   `json:"reference_rating"`
	WatchCount      int       `json:"watch_count"`
	AddedAt         time.Time `json:"added_at"`
}

// EffectiveRating returns the user's rating when present, else the reference rating.
func (r *WatchRecord) EffectiveRating() float64 {
	if r.UserRating != nil {
		return *r.UserRating
	}
	return r.ReferenceRating
}

// UserSummary is a directory entry for candidate sampling and display enrichment.
type UserSummary struct {
	ID          string    `json:"id"`
	RecordCount int       `json:"record_count"`
	MemberSince time.Time `json:"member_since"`
}
