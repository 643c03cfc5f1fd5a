// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package similarity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/metadata"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/store"
	"github.com/tomtom215/tastematch/internal/tastemap"
)

func floatPtr(v float64) *float64 { return &v }

// stubProvider returns fixed metadata keyed by content ID.
func stubProvider(metas map[int64]*models.ContentMetadata) metadata.Provider {
	return metadata.ProviderFunc(func(_ context.Context, contentID int64, _ models.MediaType) *models.ContentMetadata {
		return metas[contentID]
	})
}

func newTestEngine(st *store.MemoryStore, provider metadata.Provider) *Engine {
	c := cache.New(time.Minute)
	agg := tastemap.NewAggregator(st, provider, c, tastemap.Config{BatchDelay: time.Millisecond})
	return NewEngine(agg, st, c, time.Minute)
}

func addWatched(st *store.MemoryStore, userID string, contentID int64, rating float64) {
	st.AddRecord(models.WatchRecord{
		UserID:          userID,
		ContentID:       contentID,
		MediaType:       models.MediaTypeMovie,
		Status:          models.StatusWatched,
		UserRating:      floatPtr(rating),
		ReferenceRating: 7,
		WatchCount:      1,
		AddedAt:         time.Now(),
	})
}

func TestComputeSimilarityIdenticalUsers(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {
			ContentID: 1,
			Genres:    []models.Genre{{ID: 28, Name: "Action"}},
			Cast:      []models.CastMember{{PersonID: 10, Name: "Ryan Gosling"}},
			Crew:      []models.CrewMember{{PersonID: 20, Name: "Denis Villeneuve", Job: "Director"}},
		},
		2: {
			ContentID: 2,
			Genres:    []models.Genre{{ID: 18, Name: "Drama"}},
			Cast:      []models.CastMember{{PersonID: 11, Name: "Emma Stone"}},
			Crew:      []models.CrewMember{{PersonID: 20, Name: "Denis Villeneuve", Job: "Director"}},
		},
	}

	// Same content, same ratings, on both sides. Varying ratings give the
	// correlation a non-zero variance.
	for _, user := range []string{"alice", "bob"} {
		addWatched(st, user, 1, 9)
		addWatched(st, user, 2, 6)
	}

	engine := newTestEngine(st, stubProvider(metas))
	result, err := engine.ComputeSimilarity(context.Background(), "alice", "bob", false)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}

	if !floatEquals(result.TasteSimilarity, 1) {
		t.Errorf("TasteSimilarity = %v, want 1", result.TasteSimilarity)
	}
	if !floatEquals(result.RatingCorrelation, 1) {
		t.Errorf("RatingCorrelation = %v, want 1", result.RatingCorrelation)
	}
	if !floatEquals(result.PersonOverlap, 1) {
		t.Errorf("PersonOverlap = %v, want 1", result.PersonOverlap)
	}
	if !floatEquals(result.OverallMatch, 1) {
		t.Errorf("OverallMatch = %v, want 1", result.OverallMatch)
	}
	if !IsSimilar(result.OverallMatch) {
		t.Error("Expected identical users to clear the similarity gate")
	}
}

func TestComputeSimilarityNoSharedRatings(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
		2: {ContentID: 2, Genres: []models.Genre{{ID: 18, Name: "Drama"}}},
	}

	addWatched(st, "alice", 1, 8)
	addWatched(st, "bob", 2, 7)

	engine := newTestEngine(st, stubProvider(metas))
	result, err := engine.ComputeSimilarity(context.Background(), "alice", "bob", false)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}

	if !floatEquals(result.RatingCorrelation, 0) {
		t.Errorf("RatingCorrelation = %v, want 0 without shared content", result.RatingCorrelation)
	}
	if !floatEquals(result.TasteSimilarity, 0) {
		t.Errorf("TasteSimilarity = %v, want 0 with disjoint genres", result.TasteSimilarity)
	}
}

func TestComputeSimilarityCorrelationAcrossMediaTypes(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
		2: {ContentID: 2, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
	}

	// alice stores both as movies, bob as tv. The correlation join keys on
	// the provider ID alone, so the records still pair up.
	addWatched(st, "alice", 1, 9)
	addWatched(st, "alice", 2, 5)
	for contentID, rating := range map[int64]float64{1: 9, 2: 5} {
		st.AddRecord(models.WatchRecord{
			UserID:          "bob",
			ContentID:       contentID,
			MediaType:       models.MediaTypeTV,
			Status:          models.StatusWatched,
			UserRating:      floatPtr(rating),
			ReferenceRating: 7,
			WatchCount:      1,
			AddedAt:         time.Now(),
		})
	}

	engine := newTestEngine(st, stubProvider(metas))
	result, err := engine.ComputeSimilarity(context.Background(), "alice", "bob", false)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}

	if !floatEquals(result.RatingCorrelation, 1) {
		t.Errorf("RatingCorrelation = %v, want 1 across media types", result.RatingCorrelation)
	}
}

// failingStore errors on every call, simulating a backend outage.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) QueryByUser(context.Context, string, []models.WatchStatus) ([]models.WatchRecord, error) {
	return nil, errStoreDown
}
func (failingStore) CountByUser(context.Context, string) (int, error) { return 0, errStoreDown }
func (failingStore) GetRecord(context.Context, string, int64, models.MediaType) (*models.WatchRecord, error) {
	return nil, errStoreDown
}
func (failingStore) CountRatings(context.Context, int64, models.MediaType) (int, error) {
	return 0, errStoreDown
}
func (failingStore) ActiveUserIDs(context.Context, string, time.Time, int) ([]string, error) {
	return nil, errStoreDown
}

func TestComputeSimilarityTasteMapUnavailable(t *testing.T) {
	c := cache.New(time.Minute)
	agg := tastemap.NewAggregator(failingStore{}, stubProvider(nil), c, tastemap.Config{})
	engine := NewEngine(agg, failingStore{}, c, time.Minute)

	result, err := engine.ComputeSimilarity(context.Background(), "alice", "bob", false)
	if err != nil {
		t.Fatalf("Expected nil error for unavailable taste maps, got %v", err)
	}
	if result.OverallMatch != 0 || result.TasteSimilarity != 0 || result.PersonOverlap != 0 {
		t.Errorf("Expected all-zero result, got %+v", result)
	}
	if result.RatingPatterns != nil {
		t.Error("Expected no rating patterns on the degenerate path")
	}
}

func TestComputeSimilarityCachesOverallMatch(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
	}
	addWatched(st, "alice", 1, 8)
	addWatched(st, "bob", 1, 8)

	c := cache.New(time.Minute)
	agg := tastemap.NewAggregator(st, stubProvider(metas), c, tastemap.Config{BatchDelay: time.Millisecond})
	engine := NewEngine(agg, st, c, time.Minute)

	result, err := engine.ComputeSimilarity(context.Background(), "alice", "bob", false)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}

	cached, ok := c.Get(cache.SimilarityKey("alice", "bob"))
	if !ok {
		t.Fatal("Expected the pairwise match to be cached")
	}
	if !floatEquals(cached.(float64), result.OverallMatch) {
		t.Errorf("Cached match = %v, want %v", cached, result.OverallMatch)
	}
}

func TestComputeSimilarityIncludesPatterns(t *testing.T) {
	st := store.NewMemoryStore()
	metas := map[int64]*models.ContentMetadata{
		1: {ContentID: 1, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
		2: {ContentID: 2, Genres: []models.Genre{{ID: 28, Name: "Action"}}},
	}
	for _, user := range []string{"alice", "bob"} {
		addWatched(st, user, 1, 9)
		addWatched(st, user, 2, 5)
	}

	engine := newTestEngine(st, stubProvider(metas))
	result, err := engine.ComputeSimilarity(context.Background(), "alice", "bob", true)
	if err != nil {
		t.Fatalf("ComputeSimilarity() error = %v", err)
	}
	if result.RatingPatterns == nil {
		t.Fatal("Expected rating patterns when requested")
	}
	if result.RatingPatterns.TotalSharedMovies != 2 {
		t.Errorf("TotalSharedMovies = %d, want 2", result.RatingPatterns.TotalSharedMovies)
	}
	if result.RatingPatterns.PerfectMatches != 2 {
		t.Errorf("PerfectMatches = %d, want 2", result.RatingPatterns.PerfectMatches)
	}
}
