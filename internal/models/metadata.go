// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package models

// Genre is a provider genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one billed actor from the provider credits, in billing order.
type CastMember struct {
	PersonID  int64  `json:"person_id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`
}

// CrewMember is one crew credit. Only Job == "Director" entries feed taste profiles.
type CrewMember struct {
	PersonID int64  `json:"person_id"`
	Name     string `json:"name"`
	Job      string `json:"job"`
}

// ContentMetadata is the externally sourced description of one piece of content.
// Every field beyond the identifiers is optional; consumers must tolerate zero
// values because provider failures degrade to absent metadata, never to errors.
type ContentMetadata struct {
	ContentID        int64     `json:"content_id"`
	MediaType        MediaType `json:"media_type"`
	Title            string    `json:"title"`
	Genres           []Genre   `json:"genres"`
	OriginalLanguage string    `json:"original_language"`
	// ReleaseDate is the release or first-air date as the provider formats it,
	// normally "YYYY-MM-DD". Consumers parse the leading four digits only.
	ReleaseDate string       `json:"release_date,omitempty"`
	PosterPath  string       `json:"poster_path,omitempty"`
	Overview    string       `json:"overview,omitempty"`
	VoteAverage float64      `json:"vote_average,omitempty"`
	Cast        []CastMember `json:"cast,omitempty"`
	Crew        []CrewMember `json:"crew,omitempty"`
}

// HasGenreID reports whether the metadata carries the given provider genre ID.
func (m *ContentMetadata) HasGenreID(id int) bool {
	if m == nil {
		return false
	}
	for _, g := range m.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Directors returns the names of crew members credited as directors.
func (m *ContentMetadata) Directors() []string {
	if m == nil {
		return nil
	}
	var names []string
	for _, c := range m.Crew {
		if c.Job == "Director" {
			names = append(names, c.Name)
		}
	}
	return names
}
