// Package search provides full-text search over the loaded catalog using
// Bleve. Anime and characters share one in-memory index with type
// discrimination, faceted filtering and fuzzy title matching.
package search

import (
	"strconv"
	"strings"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// DocType represents the type of document in the index.
type DocType string

// Document types for the search index.
const (
	DocTypeAnime     DocType = "anime"
	DocTypeCharacter DocType = "character"
)

// Document is the unified document structure for the Bleve index.
type Document struct {
	ID    string  `json:"id"` // anime-52991, character-40
	Type  DocType `json:"doc_type"`
	MalID int     `json:"mal_id"`

	// Title for anime, name for characters.
	Name string `json:"name"`

	// English and Japanese titles, or kanji name and nicknames.
	AltNames []string `json:"alt_names,omitempty"`

	// Synopsis for anime, biography for characters.
	Text string `json:"text,omitempty"`

	// Lowercased genre names, exact match only.
	Genres []string `json:"genres,omitempty"`

	AnimeType string `json:"anime_type,omitempty"`
	Status    string `json:"status,omitempty"`

	Year      int     `json:"year,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Members   int     `json:"members,omitempty"`
	Favorites int     `json:"favorites,omitempty"`
}

// AnimeDocID returns the index id for an anime.
func AnimeDocID(id int) string { return "anime-" + strconv.Itoa(id) }

// CharacterDocID returns the index id for a character.
func CharacterDocID(id int) string { return "character-" + strconv.Itoa(id) }

// FromAnime converts a catalog record to a search document.
func FromAnime(a domain.AnimeRecord) *Document {
	doc := &Document{
		ID:        AnimeDocID(a.ID),
		Type:      DocTypeAnime,
		MalID:     a.ID,
		Name:      a.Title,
		AltNames:  nonEmpty(a.TitleEnglish, a.TitleJapanese),
		Text:      a.Synopsis,
		AnimeType: string(a.Type),
		Status:    a.Status,
		Year:      a.Year,
		Score:     a.Score,
		Members:   a.Members,
		Favorites: a.Favorites,
	}
	if doc.Year == 0 {
		if start, ok := a.Start(); ok {
			doc.Year = start.UTC().Year()
		}
	}
	for _, g := range a.Genres {
		doc.Genres = append(doc.Genres, normalizeKeyword(g.Name))
	}
	return doc
}

// FromCharacter converts a character record to a search document.
func FromCharacter(c domain.CharacterRecord) *Document {
	return &Document{
		ID:        CharacterDocID(c.ID),
		Type:      DocTypeCharacter,
		MalID:     c.ID,
		Name:      c.Name,
		AltNames:  nonEmpty(append([]string{c.NameKanji}, c.Nicknames...)...),
		Text:      c.About,
		Favorites: c.Favorites,
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":       d.ID,
		"doc_type": string(d.Type),
		"mal_id":   float64(d.MalID),
		"name":     d.Name,
	}
	if len(d.AltNames) > 0 {
		m["alt_names"] = d.AltNames
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.AnimeType != "" {
		m["anime_type"] = d.AnimeType
	}
	if d.Status != "" {
		m["status"] = d.Status
	}
	if d.Year > 0 {
		m["year"] = float64(d.Year)
	}
	m["score"] = d.Score
	m["members"] = float64(d.Members)
	m["favorites"] = float64(d.Favorites)
	return m
}

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
