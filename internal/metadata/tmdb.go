// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tastematch/internal/config"
	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/metrics"
	"github.com/tomtom215/tastematch/internal/models"
)

// TMDBClient is a TMDB-style HTTP metadata provider with a client-side rate
// limiter and a circuit breaker. One request fetches details and credits
// together via append_to_response.
type TMDBClient struct {
	baseURL   string
	apiKey    string
	castLimit int
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[*models.ContentMetadata]
	logger    zerolog.Logger
}

var _ Provider = (*TMDBClient)(nil)

// NewTMDBClient builds a client from the metadata configuration.
func NewTMDBClient(cfg config.MetadataConfig) *TMDBClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TMDBClient{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		castLimit: cfg.CastLimit,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[*models.ContentMetadata](gobreaker.Settings{
			Name:    "metadata-provider",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		logger: logging.WithComponent("metadata"),
	}
}

// Fetch returns metadata for one content item, or nil on any failure.
func (c *TMDBClient) Fetch(ctx context.Context, contentID int64, mediaType models.MediaType) *models.ContentMetadata {
	start := time.Now()

	meta, err := c.breaker.Execute(func() (*models.ContentMetadata, error) {
		return c.fetch(ctx, contentID, mediaType)
	})

	metrics.MetadataFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MetadataFetches.WithLabelValues("error").Inc()
		c.logger.Debug().
			Err(err).
			Int64("content_id", contentID).
			Str("media_type", string(mediaType)).
			Msg("Metadata fetch failed")
		return nil
	}

	metrics.MetadataFetches.WithLabelValues("hit").Inc()
	return meta
}

// tmdbPayload mirrors the subset of the provider response the engine uses.
// Movies carry title/release_date; TV carries name/first_air_date.
type tmdbPayload struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Name             string         `json:"name"`
	ReleaseDate      string         `json:"release_date"`
	FirstAirDate     string         `json:"first_air_date"`
	OriginalLanguage string         `json:"original_language"`
	PosterPath       string         `json:"poster_path"`
	Overview         string         `json:"overview"`
	VoteAverage      float64        `json:"vote_average"`
	Genres           []models.Genre `json:"genres"`
	Credits          struct {
		Cast []struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			ProfilePath string `json:"profile_path"`
		} `json:"cast"`
		Crew []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

func (c *TMDBClient) fetch(ctx context.Context, contentID int64, mediaType models.MediaType) (*models.ContentMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%d?append_to_response=credits&api_key=%s",
		c.baseURL, mediaType, contentID, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var payload tmdbPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	return c.toMetadata(&payload, mediaType), nil
}

func (c *TMDBClient) toMetadata(p *tmdbPayload, mediaType models.MediaType) *models.ContentMetadata {
	meta := &models.ContentMetadata{
		ContentID:        p.ID,
		MediaType:        mediaType,
		Title:            p.Title,
		Genres:           p.Genres,
		OriginalLanguage: p.OriginalLanguage,
		ReleaseDate:      p.ReleaseDate,
		PosterPath:       p.PosterPath,
		Overview:         p.Overview,
		VoteAverage:      p.VoteAverage,
	}
	if meta.Title == "" {
		meta.Title = p.Name
	}
	if meta.ReleaseDate == "" {
		meta.ReleaseDate = p.FirstAirDate
	}

	cast := p.Credits.Cast
	if c.castLimit > 0 && len(cast) > c.castLimit {
		cast = cast[:c.castLimit]
	}
	for _, m := range cast {
		meta.Cast = append(meta.Cast, models.CastMember{
			PersonID:  m.ID,
			Name:      m.Name,
			ImagePath: m.ProfilePath,
		})
	}
	for _, m := range p.Credits.Crew {
		if m.Job != "Director" {
			continue
		}
		meta.Crew = append(meta.Crew, models.CrewMember{
			PersonID: m.ID,
			Name:     m.Name,
			Job:      m.Job,
		})
	}

	return meta
}
