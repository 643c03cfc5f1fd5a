// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package store defines the persistence ports the engine consumes and ships
// an in-memory implementation plus a Badger-backed recommendation log.
//
// The engine never assumes a concrete database; anything satisfying these
// interfaces can back it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/tastematch/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// WatchHistoryStore exposes read access to users' watch-list records.
type WatchHistoryStore interface {
	// QueryByUser returns the user's records, optionally filtered by status.
	// A nil or empty status filter returns every record.
	QueryByUser(ctx context.Context, userID string, statuses []models.WatchStatus) ([]models.WatchRecord, error)

	// CountByUser returns the user's total record count.
	CountByUser(ctx context.Context, userID string) (int, error)

	// GetRecord returns one record by its (user, content, media type) key.
	// Returns ErrNotFound when absent.
	GetRecord(ctx context.Context, userID string, contentID int64, mediaType models.MediaType) (*models.WatchRecord, error)

	// CountRatings returns how many stored records carry a user rating for
	// the given content, across all users.
	CountRatings(ctx context.Context, contentID int64, mediaType models.MediaType) (int, error)

	// ActiveUserIDs returns distinct user IDs with a record added at or after
	// since, excluding excludeUserID, capped at limit.
	ActiveUserIDs(ctx context.Context, excludeUserID string, since time.Time, limit int) ([]string, error)
}

// UserDirectory exposes user listing for candidate sampling and display
// enrichment.
type UserDirectory interface {
	// List returns users other than excludeUserID having at least
	// minHistoryCount records, capped at limit.
	List(ctx context.Context, excludeUserID string, minHistoryCount, limit int) ([]models.UserSummary, error)

	// Summaries returns directory entries for the given users in one batch.
	// Unknown IDs are simply absent from the result.
	Summaries(ctx context.Context, userIDs []string) (map[string]models.UserSummary, error)
}

// RecommendationLog is the append-only audit log of shown recommendations.
// It also serves cooldown queries: content logged within the cooldown window
// is excluded from reselection.
type RecommendationLog interface {
	// Append stores one entry and returns its assigned ID.
	Append(ctx context.Context, entry *models.RecommendationLogEntry) (string, error)

	// QueryRecent returns the content keys the user was shown since the given
	// time.
	QueryRecent(ctx context.Context, userID string, since time.Time) ([]models.ContentKey, error)

	// Close releases underlying resources.
	Close() error
}
