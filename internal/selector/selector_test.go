// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package selector

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/tastematch/internal/metadata"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/store"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func stubProvider(metas map[int64]*models.ContentMetadata) metadata.Provider {
	return metadata.ProviderFunc(func(_ context.Context, contentID int64, _ models.MediaType) *models.ContentMetadata {
		return metas[contentID]
	})
}

func newTestSelector(st *store.MemoryStore, metas map[int64]*models.ContentMetadata, recLog store.RecommendationLog) *Selector {
	if recLog == nil {
		recLog = store.NewMemoryRecommendationLog()
	}
	s := New(st, stubProvider(metas), recLog, Config{BatchDelay: time.Millisecond})
	s.randIntn = func(n int) int { return 0 } // deterministic: always the first candidate
	return s
}

func addRecord(st *store.MemoryStore, contentID int64, mediaType models.MediaType, status models.WatchStatus, rating *float64) {
	st.AddRecord(models.WatchRecord{
		UserID:          "alice",
		ContentID:       contentID,
		MediaType:       mediaType,
		Status:          status,
		UserRating:      rating,
		ReferenceRating: 7,
		WatchCount:      1,
		AddedAt:         time.Now(),
	})
}

func TestPickEmptyList(t *testing.T) {
	st := store.NewMemoryStore()
	s := newTestSelector(st, nil, nil)

	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if result.Movie != nil {
		t.Error("Expected no movie for an empty list")
	}
	if result.Message != MsgListEmpty {
		t.Errorf("Message = %q, want %q", result.Message, MsgListEmpty)
	}
}

func TestPickDefaultsToWantList(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Title: "Blade Runner 2049"},
	}
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)
	addRecord(st, 2, models.MediaTypeMovie, models.StatusWatched, floatPtr(9))

	s := newTestSelector(st, metas, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	if result.Movie == nil {
		t.Fatalf("Expected a pick, got message %q", result.Message)
	}
	// Empty lists default to the want list; the watched record is not a
	// candidate.
	if result.Movie.ContentID != 1 {
		t.Errorf("ContentID = %d, want 1 from the want list", result.Movie.ContentID)
	}
	if result.Movie.Title != "Blade Runner 2049" {
		t.Errorf("Title = %q, want the enriched title", result.Movie.Title)
	}
	if result.Movie.StatusLabel != "want" {
		t.Errorf("StatusLabel = %q, want %q", result.Movie.StatusLabel, "want")
	}
}

func TestPickWatchedListIncludesDropped(t *testing.T) {
	st := store.NewMemoryStore()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusDropped, nil)

	s := newTestSelector(st, nil, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		Lists: []string{"watched"},
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	if result.Movie == nil {
		t.Fatalf("Expected the dropped record to be a candidate, got %q", result.Message)
	}
	if result.Movie.StatusLabel != "dropped" {
		t.Errorf("StatusLabel = %q, want %q", result.Movie.StatusLabel, "dropped")
	}
}

func TestPickUnknownFilterValuesDropped(t *testing.T) {
	st := store.NewMemoryStore()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)

	s := newTestSelector(st, nil, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		ContentTypes: []string{"podcast"},
		Lists:        []string{"favorites"},
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	// Unknown values are normalized away: lists falls back to want, the
	// unknown content type disappears and means "every type".
	if result.Movie == nil {
		t.Fatalf("Expected a pick after normalization, got %q", result.Message)
	}
}

func TestPickAnimeClassification(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Genres: []models.Genre{{ID: 16, Name: "Animation"}}, OriginalLanguage: "ja"},
		2: {ContentID: 2, Genres: []models.Genre{{ID: 16, Name: "Animation"}}, OriginalLanguage: "en"},
	}
	addRecord(st, 1, models.MediaTypeTV, models.StatusWantToWatch, nil) // anime
	addRecord(st, 2, models.MediaTypeTV, models.StatusWantToWatch, nil) // western animation

	s := newTestSelector(st, metas, nil)

	// An explicit anime request admits only the classified-anime record.
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		ContentTypes: []string{"anime"},
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if result.Movie == nil || result.Movie.ContentID != 1 {
		t.Fatalf("Expected content 1 for the anime request, got %+v", result.Movie)
	}
	// Classified anime is displayed as anime, not as its stored type.
	if result.Movie.MediaType != models.MediaTypeAnime {
		t.Errorf("MediaType = %q, want anime", result.Movie.MediaType)
	}

	// A plain tv request excludes classified anime even though its stored
	// type is tv.
	result, err = s.Pick(context.Background(), "alice", models.RecommendationFilters{
		ContentTypes: []string{"tv"},
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if result.Movie == nil || result.Movie.ContentID != 2 {
		t.Fatalf("Expected content 2 for the tv request, got %+v", result.Movie)
	}
}

func TestPickCooldownExcludesRecentlyShown(t *testing.T) {
	st := store.NewMemoryStore()
	recLog := store.NewMemoryRecommendationLog()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)

	if _, err := recLog.Append(context.Background(), &models.RecommendationLogEntry{
		UserID:    "alice",
		ContentID: 1,
		MediaType: models.MediaTypeMovie,
		ShownAt:   time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	s := newTestSelector(st, nil, recLog)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	if result.Movie != nil {
		t.Error("Expected the recently shown content to be excluded")
	}
	if result.Message != MsgNoResults {
		t.Errorf("Message = %q, want %q", result.Message, MsgNoResults)
	}
}

func TestPickRatingFilter(t *testing.T) {
	st := store.NewMemoryStore()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWatched, floatPtr(9))
	addRecord(st, 2, models.MediaTypeMovie, models.StatusWatched, floatPtr(4))
	addRecord(st, 3, models.MediaTypeMovie, models.StatusWatched, nil) // unrated

	s := newTestSelector(st, nil, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		Lists:     []string{"watched"},
		MinRating: floatPtr(8),
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	// Only content 1 clears the bound; the unrated record counts as rated 0
	// and fails the minimum.
	if result.Movie == nil || result.Movie.ContentID != 1 {
		t.Fatalf("Expected content 1, got %+v", result.Movie)
	}
}

func TestPickMaxRatingOnlyKeepsUnrated(t *testing.T) {
	st := store.NewMemoryStore()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWatched, nil) // unrated
	addRecord(st, 2, models.MediaTypeMovie, models.StatusWatched, floatPtr(9))

	s := newTestSelector(st, nil, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		Lists:     []string{"watched"},
		MaxRating: floatPtr(8),
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	// Unrated counts as 0, which clears a maximum-only bound; the 9-rated
	// record does not.
	if result.Movie == nil || result.Movie.ContentID != 1 {
		t.Fatalf("Expected the unrated record to survive, got %+v", result.Movie)
	}
}

func TestPickRatingFilterIgnoredForWantList(t *testing.T) {
	st := store.NewMemoryStore()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)

	s := newTestSelector(st, nil, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		Lists:     []string{"want"},
		MinRating: floatPtr(8),
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	// The rating filter only applies when the watched list is selected.
	if result.Movie == nil {
		t.Fatalf("Expected the want-list record to survive, got %q", result.Message)
	}
}

func TestPickYearFilter(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, ReleaseDate: "2017-10-06"},
		2: {ContentID: 2, ReleaseDate: "1999-03-31"},
		3: {ContentID: 3, ReleaseDate: "unknown"},
	}
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)
	addRecord(st, 2, models.MediaTypeMovie, models.StatusWantToWatch, nil)
	addRecord(st, 3, models.MediaTypeMovie, models.StatusWantToWatch, nil)

	s := newTestSelector(st, metas, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		YearFrom: intPtr(2010),
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	// Content 2 is excluded; content 3's unparseable year keeps it in.
	// With the deterministic picker the first survivor wins.
	if result.Movie == nil || result.Movie.ContentID != 1 {
		t.Fatalf("Expected content 1, got %+v", result.Movie)
	}

	s.randIntn = func(n int) int { return n - 1 }
	result, err = s.Pick(context.Background(), "alice", models.RecommendationFilters{
		YearFrom: intPtr(2010),
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if result.Movie == nil || result.Movie.ContentID != 3 {
		t.Fatalf("Expected the unparseable-year content to survive, got %+v", result.Movie)
	}
}

func TestPickGenreFilter(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
		2: {ContentID: 2, Genres: []models.Genre{{ID: 18, Name: "Drama"}}},
		// Content 3 has no metadata and cannot prove genre membership.
	}
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)
	addRecord(st, 2, models.MediaTypeMovie, models.StatusWantToWatch, nil)
	addRecord(st, 3, models.MediaTypeMovie, models.StatusWantToWatch, nil)

	s := newTestSelector(st, metas, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{
		GenreIDs: []int{28},
	})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	if result.Movie == nil || result.Movie.ContentID != 1 {
		t.Fatalf("Expected the action title only, got %+v", result.Movie)
	}
}

func TestPickLogsShownEntry(t *testing.T) {
	st := store.NewMemoryStore()
	recLog := store.NewMemoryRecommendationLog()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)

	s := newTestSelector(st, nil, recLog)
	if _, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{}); err != nil {
		t.Fatalf("Pick() error = %v", err)
	}

	keys, err := recLog.QueryRecent(context.Background(), "alice", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("QueryRecent() error = %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(keys))
	}
	if keys[0].ContentID != 1 || keys[0].MediaType != models.MediaTypeMovie {
		t.Errorf("Unexpected logged key: %+v", keys[0])
	}
}

func TestPickVoteCountFromStore(t *testing.T) {
	st := store.NewMemoryStore()
	addRecord(st, 1, models.MediaTypeMovie, models.StatusWantToWatch, nil)
	// Two other users rated the same content.
	for _, user := range []string{"bob", "carol"} {
		st.AddRecord(models.WatchRecord{
			UserID:          user,
			ContentID:       1,
			MediaType:       models.MediaTypeMovie,
			Status:          models.StatusWatched,
			UserRating:      floatPtr(8),
			ReferenceRating: 7,
			WatchCount:      1,
			AddedAt:         time.Now(),
		})
	}

	s := newTestSelector(st, nil, nil)
	result, err := s.Pick(context.Background(), "alice", models.RecommendationFilters{})
	if err != nil {
		t.Fatalf("Pick() error = %v", err)
	}
	if result.Movie == nil {
		t.Fatalf("Expected a pick, got %q", result.Message)
	}
	if result.Movie.VoteCount != 2 {
		t.Errorf("VoteCount = %d, want 2", result.Movie.VoteCount)
	}
}

func TestNormalizeFilters(t *testing.T) {
	got := normalizeFilters(models.RecommendationFilters{
		ContentTypes: []string{"movie", "podcast", "anime"},
		Lists:        []string{"watched", "bogus"},
	})

	if len(got.ContentTypes) != 2 || got.ContentTypes[0] != "movie" || got.ContentTypes[1] != "anime" {
		t.Errorf("ContentTypes = %v, want [movie anime]", got.ContentTypes)
	}
	if len(got.Lists) != 1 || got.Lists[0] != "watched" {
		t.Errorf("Lists = %v, want [watched]", got.Lists)
	}

	empty := normalizeFilters(models.RecommendationFilters{})
	if len(empty.Lists) != 1 || empty.Lists[0] != "want" {
		t.Errorf("Lists = %v, want the want default", empty.Lists)
	}
}
