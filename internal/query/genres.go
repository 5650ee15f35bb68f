package query

import (
	"cmp"
	"slices"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// GenreCount is the number of records tagged with a genre.
type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TallyGenres counts genre occurrences across all records, in the order
// genres are first encountered.
func TallyGenres(list []domain.AnimeRecord) []GenreCount {
	index := make(map[string]int)
	out := []GenreCount{}
	for _, a := range list {
		for _, g := range a.Genres {
			if i, ok := index[g.Name]; ok {
				out[i].Count++
				continue
			}
			index[g.Name] = len(out)
			out = append(out, GenreCount{Name: g.Name, Count: 1})
		}
	}
	return out
}

// SortGenreCounts returns counts ordered by count descending, then name.
func SortGenreCounts(counts []GenreCount) []GenreCount {
	return rank(counts, NoLimit, func(a, b GenreCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// GenreNames returns the distinct genre names in first-seen order.
func GenreNames(list []domain.AnimeRecord) []string {
	counts := TallyGenres(list)
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Name
	}
	return slices.Clip(names)
}
