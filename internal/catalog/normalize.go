package catalog

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/metadata/jikan"
)

// DefaultEpisodeURLBase prefixes synthesized episode links.
const DefaultEpisodeURLBase = "https://watchnime.com/watch"

// htmlTagPattern detects markup in free-text fields.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// Normalizer turns upstream records into domain records. It is the only
// place defaults are substituted: score 0, placeholder artwork, empty slices
// instead of nil, and episode links when the source has none.
type Normalizer struct {
	EpisodeURLBase string
}

// Anime normalizes one upstream anime.
func (n Normalizer) Anime(a jikan.Anime) domain.AnimeRecord {
	rec := domain.AnimeRecord{
		ID:            a.MalID,
		Title:         cleanTitle(a.Title),
		TitleEnglish:  cleanTitle(deref(a.TitleEnglish)),
		TitleJapanese: cleanTitle(deref(a.TitleJapanese)),
		Synopsis:      toMarkdown(deref(a.Synopsis)),
		Background:    toMarkdown(deref(a.Background)),
		Image:         a.Images.Best(),
		Score:         deref(a.Score),
		ScoredBy:      deref(a.ScoredBy),
		Rank:          deref(a.Rank),
		Popularity:    deref(a.Popularity),
		Members:       deref(a.Members),
		Favorites:     deref(a.Favorites),
		Episodes:      deref(a.Episodes),
		Type:          domain.AnimeType(deref(a.Type)),
		Status:        a.Status,
		Airing:        a.Airing,
		Aired:         domain.DateRange{From: a.Aired.From.Ptr(), To: a.Aired.To.Ptr()},
		Year:          deref(a.Year),
		Rating:        deref(a.Rating),
		Genres:        make([]domain.Genre, 0, len(a.Genres)),
		StreamingURLs: a.StreamingURLs,
	}
	if rec.Image == "" {
		rec.Image = domain.PlaceholderImage
	}
	if s, err := domain.ParseSeason(deref(a.Season)); err == nil {
		rec.Season = s
	}
	for _, g := range a.Genres {
		rec.Genres = append(rec.Genres, domain.Genre{ID: g.MalID, Name: g.Name})
	}
	for _, s := range a.Studios {
		rec.Studios = append(rec.Studios, s.Name)
	}
	for _, c := range a.Characters {
		rec.Characters = append(rec.Characters, domain.CharacterRole{
			ID:    c.Character.MalID,
			Name:  c.Character.Name,
			Image: c.Character.Images.Best(),
			Role:  c.Role,
		})
	}
	if len(rec.StreamingURLs) == 0 {
		rec.StreamingURLs = n.EpisodeURLs(rec.ID, rec.Episodes)
	}
	return rec
}

// AnimeList normalizes a page of anime.
func (n Normalizer) AnimeList(list []jikan.Anime) []domain.AnimeRecord {
	out := make([]domain.AnimeRecord, len(list))
	for i, a := range list {
		out[i] = n.Anime(a)
	}
	return out
}

// Character normalizes one upstream character.
func (n Normalizer) Character(c jikan.Character) domain.CharacterRecord {
	rec := domain.CharacterRecord{
		ID:        c.MalID,
		Name:      cleanTitle(c.Name),
		NameKanji: deref(c.NameKanji),
		Nicknames: c.Nicknames,
		Favorites: deref(c.Favorites),
		Role:      c.Role,
		Image:     c.Images.Best(),
		About:     toMarkdown(deref(c.About)),
	}
	if rec.Image == "" {
		rec.Image = domain.PlaceholderImage
	}
	for _, a := range c.Anime {
		rec.Anime = append(rec.Anime, domain.AnimeRef{ID: a.Anime.MalID, Title: cleanTitle(a.Anime.Title), Role: a.Role})
	}
	return rec
}

// CharacterList normalizes a page of characters.
func (n Normalizer) CharacterList(list []jikan.Character) []domain.CharacterRecord {
	out := make([]domain.CharacterRecord, len(list))
	for i, c := range list {
		out[i] = n.Character(c)
	}
	return out
}

// EpisodeURLs builds one link per episode: entry i is {base}/{id}/{i+1}.
func (n Normalizer) EpisodeURLs(id, episodes int) []string {
	if episodes <= 0 {
		return nil
	}
	base := strings.TrimRight(n.EpisodeURLBase, "/")
	if base == "" {
		base = DefaultEpisodeURLBase
	}
	urls := make([]string, episodes)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%d/%d", base, id, i+1)
	}
	return urls
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// cleanTitle decodes HTML entities such as &#039; that leak into titles.
func cleanTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// toMarkdown converts free text carrying HTML into Markdown. Plain text is
// returned as is.
func toMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}
