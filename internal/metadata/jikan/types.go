package jikan

import (
	"bytes"
	"encoding/json"
	"time"
)

// ListResponse is the envelope of every Jikan list endpoint. The local
// snapshot files use the same shape.
type ListResponse[T any] struct {
	Data       []T         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page a list response covers.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
	CurrentPage     int  `json:"current_page,omitempty"`
	Items           *struct {
		Count   int `json:"count"`
		Total   int `json:"total"`
		PerPage int `json:"per_page"`
	} `json:"items,omitempty"`
}

// Anime is an anime resource as returned by Jikan. Pointer fields are null
// upstream for unscored or unannounced titles.
type Anime struct {
	MalID         int             `json:"mal_id"`
	URL           string          `json:"url,omitempty"`
	Images        Images          `json:"images"`
	Title         string          `json:"title"`
	TitleEnglish  *string         `json:"title_english"`
	TitleJapanese *string         `json:"title_japanese"`
	Type          *string         `json:"type"`
	Source        string          `json:"source,omitempty"`
	Episodes      *int            `json:"episodes"`
	Status        string          `json:"status,omitempty"`
	Airing        bool            `json:"airing"`
	Aired         Aired           `json:"aired"`
	Duration      string          `json:"duration,omitempty"`
	Rating        *string         `json:"rating"`
	Score         *float64        `json:"score"`
	ScoredBy      *int            `json:"scored_by"`
	Rank          *int            `json:"rank"`
	Popularity    *int            `json:"popularity"`
	Members       *int            `json:"members"`
	Favorites     *int            `json:"favorites"`
	Synopsis      *string         `json:"synopsis"`
	Background    *string         `json:"background"`
	Season        *string         `json:"season"`
	Year          *int            `json:"year"`
	Studios       []NamedResource `json:"studios"`
	Genres        []NamedResource `json:"genres"`

	// Present only in hand-maintained snapshot files.
	Characters    []CharacterRole `json:"characters,omitempty"`
	StreamingURLs []string        `json:"streaming_urls,omitempty"`
}

// Character is a character resource from /top/characters.
type Character struct {
	MalID     int         `json:"mal_id"`
	URL       string      `json:"url,omitempty"`
	Images    Images      `json:"images"`
	Name      string      `json:"name"`
	NameKanji *string     `json:"name_kanji"`
	Nicknames []string    `json:"nicknames"`
	Favorites *int        `json:"favorites"`
	About     *string     `json:"about"`
	Role      string      `json:"role,omitempty"`
	Anime     []AnimeRole `json:"anime,omitempty"`
}

// CharacterRole is a character listed on an anime.
type CharacterRole struct {
	Role      string `json:"role"`
	Character struct {
		MalID  int    `json:"mal_id"`
		Name   string `json:"name"`
		Images Images `json:"images"`
	} `json:"character"`
}

// AnimeRole is an anime listed on a character.
type AnimeRole struct {
	Role  string `json:"role"`
	Anime struct {
		MalID int    `json:"mal_id"`
		Title string `json:"title"`
	} `json:"anime"`
}

// NamedResource is a genre, studio or similar tag.
type NamedResource struct {
	MalID int    `json:"mal_id"`
	Type  string `json:"type,omitempty"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
}

// Images holds the artwork variants of a resource.
type Images struct {
	JPG  ImageSet `json:"jpg"`
	WebP ImageSet `json:"webp"`
}

// ImageSet holds one format's artwork URLs.
type ImageSet struct {
	ImageURL      string `json:"image_url,omitempty"`
	SmallImageURL string `json:"small_image_url,omitempty"`
	LargeImageURL string `json:"large_image_url,omitempty"`
}

// Best returns the largest available artwork URL, preferring JPEG.
func (i Images) Best() string {
	for _, u := range []string{
		i.JPG.LargeImageURL, i.JPG.ImageURL,
		i.WebP.LargeImageURL, i.WebP.ImageURL,
		i.JPG.SmallImageURL, i.WebP.SmallImageURL,
	} {
		if u != "" {
			return u
		}
	}
	return ""
}

// Aired is the air-date range of an anime.
type Aired struct {
	From   Date   `json:"from"`
	To     Date   `json:"to"`
	String string `json:"string,omitempty"`
}

// Date is a lenient timestamp. Jikan sends RFC 3339 or null; snapshot files
// sometimes carry bare dates. Anything unparsable decodes as an unknown
// date rather than failing the whole document.
type Date struct {
	Time  time.Time
	Valid bool
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Time: t.UTC(), Valid: true}
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// Ptr returns the time or nil when unknown.
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
