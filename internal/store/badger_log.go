// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/models"
)

// defaultLogRetention bounds how long audit entries stay queryable. It must
// exceed the selection cooldown window with room to spare; Badger expires
// entries via TTL during compaction.
const defaultLogRetention = 30 * 24 * time.Hour

// BadgerRecommendationLog is a BadgerDB-backed RecommendationLog that
// survives restarts. Keys are ordered by user and timestamp so cooldown
// queries can seek directly to the window start.
type BadgerRecommendationLog struct {
	db        *badger.DB
	retention time.Duration
}

var _ RecommendationLog = (*BadgerRecommendationLog)(nil)

// OpenBadgerRecommendationLog opens (or creates) a Badger database at path.
func OpenBadgerRecommendationLog(path string) (*BadgerRecommendationLog, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's default logger bypasses zerolog

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open recommendation log at %s: %w", path, err)
	}

	return &BadgerRecommendationLog{db: db, retention: defaultLogRetention}, nil
}

// NewBadgerRecommendationLog wraps an already-open Badger instance.
// Retention of 0 selects the default.
func NewBadgerRecommendationLog(db *badger.DB, retention time.Duration) *BadgerRecommendationLog {
	if retention <= 0 {
		retention = defaultLogRetention
	}
	return &BadgerRecommendationLog{db: db, retention: retention}
}

// logKey builds "rec:{userID}:{unixNano}:{id}". The timestamp segment keeps
// a user's entries in chronological key order.
func logKey(userID string, shownAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("rec:%s:%020d:%s", userID, shownAt.UnixNano(), id))
}

func userPrefix(userID string) []byte {
	return []byte("rec:" + userID + ":")
}

// Append stores one entry with the configured retention TTL.
func (l *BadgerRecommendationLog) Append(_ context.Context, entry *models.RecommendationLogEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ShownAt.IsZero() {
		entry.ShownAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to encode log entry: %w", err)
	}

	key := logKey(entry.UserID, entry.ShownAt, entry.ID)
	err = l.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, data).WithTTL(l.retention)
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("failed to append log entry: %w", err)
	}

	return entry.ID, nil
}

// QueryRecent returns content keys logged for the user since the given time.
// Undecodable entries are skipped and logged, never fatal.
func (l *BadgerRecommendationLog) QueryRecent(_ context.Context, userID string, since time.Time) ([]models.ContentKey, error) {
	var out []models.ContentKey

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek straight to the first entry inside the window.
		seekKey := logKey(userID, since, "")
		for it.Seek(seekKey); it.Valid(); it.Next() {
			item := it.Item()
			var entry models.RecommendationLogEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping undecodable recommendation log entry")
				continue
			}
			if entry.ShownAt.Before(since) {
				continue
			}
			out = append(out, models.ContentKey{ContentID: entry.ContentID, MediaType: entry.MediaType})
		}
		return nil
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to query recommendation log: %w", err)
	}

	return out, nil
}

// Close closes the underlying database.
func (l *BadgerRecommendationLog) Close() error {
	return l.db.Close()
}
