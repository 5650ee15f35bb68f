// Package domain contains the catalog and watch-list entities shared by the
// fetch, query, storage and API layers.
package domain

import (
	"time"
)

// PlaceholderImage is served for records that arrive without artwork.
const PlaceholderImage = "/images/placeholder.jpg"

// Upstream airing status values.
const (
	StatusCurrentlyAiring = "Currently Airing"
	StatusFinishedAiring  = "Finished Airing"
	StatusNotYetAired     = "Not yet aired"
)

// AnimeType is the release format of a title.
type AnimeType string

// Known release formats. Other upstream values are kept verbatim.
const (
	TypeTV      AnimeType = "TV"
	TypeMovie   AnimeType = "Movie"
	TypeOVA     AnimeType = "OVA"
	TypeSpecial AnimeType = "Special"
	TypeONA     AnimeType = "ONA"
	TypeMusic   AnimeType = "Music"
)

// AnimeTypes lists the known formats in display order.
var AnimeTypes = []AnimeType{TypeTV, TypeMovie, TypeOVA, TypeSpecial, TypeONA, TypeMusic}

// Known reports whether t is one of the known formats.
func (t AnimeType) Known() bool {
	for _, k := range AnimeTypes {
		if t == k {
			return true
		}
	}
	return false
}

// AnimeRecord is one catalog entry. Records are normalized once after fetch
// and never mutated afterwards: Score is 0 when unscored, Image is never
// empty.
type AnimeRecord struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	TitleEnglish  string          `json:"title_english,omitempty"`
	TitleJapanese string          `json:"title_japanese,omitempty"`
	Synopsis      string          `json:"synopsis,omitempty"`
	Background    string          `json:"background,omitempty"`
	Image         string          `json:"image"`
	Score         float64         `json:"score"`
	ScoredBy      int             `json:"scored_by,omitempty"`
	Rank          int             `json:"rank,omitempty"`
	Popularity    int             `json:"popularity,omitempty"`
	Members       int             `json:"members"`
	Favorites     int             `json:"favorites"`
	Episodes      int             `json:"episodes"`
	Type          AnimeType       `json:"type,omitempty"`
	Status        string          `json:"status,omitempty"`
	Airing        bool            `json:"airing"`
	Aired         DateRange       `json:"aired"`
	Season        Season          `json:"season,omitempty"`
	Year          int             `json:"year,omitempty"`
	Rating        string          `json:"rating,omitempty"`
	Genres        []Genre         `json:"genres"`
	Studios       []string        `json:"studios,omitempty"`
	Characters    []CharacterRole `json:"characters,omitempty"`
	StreamingURLs []string        `json:"streaming_urls,omitempty"`
}

// Genre is a genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DateRange is an air-date range. Either end may be unknown.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Start returns the air-start date and whether it is known.
func (a AnimeRecord) Start() (time.Time, bool) {
	if a.Aired.From == nil {
		return time.Time{}, false
	}
	return *a.Aired.From, true
}

// HasGenre reports whether the record is tagged with the named genre.
func (a AnimeRecord) HasGenre(name string) bool {
	for _, g := range a.Genres {
		if g.Name == name {
			return true
		}
	}
	return false
}

// AnimeSummary is the reduced projection of a record kept in the watch-list.
// It is a copy, so stored entries survive changes to the source data.
type AnimeSummary struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Image    string    `json:"image"`
	Episodes int       `json:"episodes"`
	Type     AnimeType `json:"type,omitempty"`
}

// Summarize projects a record into a watch-list summary.
func Summarize(a AnimeRecord) AnimeSummary {
	return AnimeSummary{
		ID:       a.ID,
		Title:    a.Title,
		Image:    a.Image,
		Episodes: a.Episodes,
		Type:     a.Type,
	}
}
