// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tastematch/internal/models"
)

// MemoryStore is a thread-safe in-memory WatchHistoryStore and UserDirectory.
// It backs tests and single-node deployments without external persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]models.WatchRecord // userID -> records in insertion order
	users   map[string]models.UserSummary
}

// Interface compliance checks.
var (
	_ WatchHistoryStore = (*MemoryStore)(nil)
	_ UserDirectory     = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]models.WatchRecord),
		users:   make(map[string]models.UserSummary),
	}
}

// AddUser registers a user in the directory.
func (s *MemoryStore) AddUser(id string, memberSince time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.ID = id
	u.MemberSince = memberSince
	s.users[id] = u
}

// AddRecord appends a watch record, creating the user directory entry on
// first use.
func (s *MemoryStore) AddRecord(rec models.WatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.UserID] = append(s.records[rec.UserID], rec)

	u, ok := s.users[rec.UserID]
	if !ok {
		u = models.UserSummary{ID: rec.UserID, MemberSince: rec.AddedAt}
	}
	u.RecordCount++
	s.users[rec.UserID] = u
}

// QueryByUser returns the user's records filtered by status. Records are
// returned in insertion order; a nil filter returns everything.
func (s *MemoryStore) QueryByUser(_ context.Context, userID string, statuses []models.WatchStatus) ([]models.WatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records[userID]
	if len(statuses) == 0 {
		out := make([]models.WatchRecord, len(all))
		copy(out, all)
		return out, nil
	}

	wanted := make(map[models.WatchStatus]struct{}, len(statuses))
	for _, st := range statuses {
		wanted[st] = struct{}{}
	}

	var out []models.WatchRecord
	for _, rec := range all {
		if _, ok := wanted[rec.Status]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// CountByUser returns the user's total record count.
func (s *MemoryStore) CountByUser(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[userID]), nil
}

// GetRecord returns one record by key, or ErrNotFound.
func (s *MemoryStore) GetRecord(_ context.Context, userID string, contentID int64, mediaType models.MediaType) (*models.WatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records[userID] {
		rec := s.records[userID][i]
		if rec.ContentID == contentID && rec.MediaType == mediaType {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// CountRatings counts rated records for the content across all users.
func (s *MemoryStore) CountRatings(_ context.Context, contentID int64, mediaType models.MediaType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, recs := range s.records {
		for _, rec := range recs {
			if rec.ContentID == contentID && rec.MediaType == mediaType && rec.UserRating != nil {
				count++
			}
		}
	}
	return count, nil
}

// ActiveUserIDs returns distinct users with a record added at or after since.
func (s *MemoryStore) ActiveUserIDs(_ context.Context, excludeUserID string, since time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for userID, recs := range s.records {
		if userID == excludeUserID {
			continue
		}
		for _, rec := range recs {
			if !rec.AddedAt.Before(since) {
				out = append(out, userID)
				break
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// List returns users with at least minHistoryCount records.
func (s *MemoryStore) List(_ context.Context, excludeUserID string, minHistoryCount, limit int) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.UserSummary
	for id, u := range s.users {
		if id == excludeUserID {
			continue
		}
		if u.RecordCount < minHistoryCount {
			continue
		}
		out = append(out, u)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Summaries returns directory entries for the given users.
func (s *MemoryStore) Summaries(_ context.Context, userIDs []string) (map[string]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.UserSummary, len(userIDs))
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// MemoryRecommendationLog is a thread-safe in-memory RecommendationLog.
type MemoryRecommendationLog struct {
	mu      sync.RWMutex
	entries map[string][]models.RecommendationLogEntry // userID -> entries
}

var _ RecommendationLog = (*MemoryRecommendationLog)(nil)

// NewMemoryRecommendationLog creates an empty in-memory log.
func NewMemoryRecommendationLog() *MemoryRecommendationLog {
	return &MemoryRecommendationLog{
		entries: make(map[string][]models.RecommendationLogEntry),
	}
}

// Append stores one entry, assigning an ID when the caller left it empty.
func (l *MemoryRecommendationLog) Append(_ context.Context, entry *models.RecommendationLogEntry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	l.entries[entry.UserID] = append(l.entries[entry.UserID], *entry)
	return entry.ID, nil
}

// QueryRecent returns content keys shown to the user since the given time.
func (l *MemoryRecommendationLog) QueryRecent(_ context.Context, userID string, since time.Time) ([]models.ContentKey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.ContentKey
	for _, e := range l.entries[userID] {
		if !e.ShownAt.Before(since) {
			out = append(out, models.ContentKey{ContentID: e.ContentID, MediaType: e.MediaType})
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory log.
func (l *MemoryRecommendationLog) Close() error { return nil }
