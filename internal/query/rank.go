// Package query derives listing views from an in-memory catalog.
//
// Every function is pure: it never mutates its input and returns a new
// slice, so the same catalog and parameters always give the same view. A
// limit of zero yields an empty view; a negative limit means "no limit".
// Missing numeric fields are zero after normalization, so they rank last in
// descending views without special casing.
package query

import (
	"cmp"
	"slices"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// NoLimit disables truncation.
const NoLimit = -1

func byScoreDesc(a, b domain.AnimeRecord) int { return cmp.Compare(b.Score, a.Score) }

func byMembersDesc(a, b domain.AnimeRecord) int { return cmp.Compare(b.Members, a.Members) }

func byFavoritesDesc(a, b domain.AnimeRecord) int { return cmp.Compare(b.Favorites, a.Favorites) }

// rank stable-sorts a copy of list and truncates it.
func rank[T any](list []T, limit int, order func(a, b T) int) []T {
	out := slices.Clone(list)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, order)
	return truncate(out, limit)
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit:limit]
	}
	return s
}

// filter returns the elements of list that satisfy keep, in order.
func filter[T any](list []T, keep func(T) bool) []T {
	out := make([]T, 0, len(list)/2)
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// TopByScore returns up to limit records by descending score. Records with
// equal scores keep their catalog order.
func TopByScore(list []domain.AnimeRecord, limit int) []domain.AnimeRecord {
	return rank(list, limit, byScoreDesc)
}

// TopAiring returns the best scored records currently airing.
func TopAiring(list []domain.AnimeRecord, limit int) []domain.AnimeRecord {
	return TopByScore(filter(list, func(a domain.AnimeRecord) bool { return a.Airing }), limit)
}

// TopMovies returns the best scored movies.
func TopMovies(list []domain.AnimeRecord, limit int) []domain.AnimeRecord {
	return TopByScore(filter(list, func(a domain.AnimeRecord) bool { return a.Type == domain.TypeMovie }), limit)
}

// MostPopular returns records by descending member count.
func MostPopular(list []domain.AnimeRecord, limit int) []domain.AnimeRecord {
	return rank(list, limit, byMembersDesc)
}

// MostFavorited returns records by descending favorite count.
func MostFavorited(list []domain.AnimeRecord, limit int) []domain.AnimeRecord {
	return rank(list, limit, byFavoritesDesc)
}

// TopCharacters returns characters by descending favorite count.
func TopCharacters(list []domain.CharacterRecord, limit int) []domain.CharacterRecord {
	return rank(list, limit, func(a, b domain.CharacterRecord) int {
		return cmp.Compare(b.Favorites, a.Favorites)
	})
}

// FindByID returns the record with the given id.
func FindByID(list []domain.AnimeRecord, id int) (domain.AnimeRecord, bool) {
	i := slices.IndexFunc(list, func(a domain.AnimeRecord) bool { return a.ID == id })
	if i < 0 {
		return domain.AnimeRecord{}, false
	}
	return list[i], true
}

// MergeByID concatenates lists, dropping any record whose id was already
// seen. The first occurrence wins, so merging a list with itself returns an
// equal list.
func MergeByID(lists ...[]domain.AnimeRecord) []domain.AnimeRecord {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	seen := make(map[int]struct{}, total)
	out := make([]domain.AnimeRecord, 0, total)
	for _, l := range lists {
		for _, a := range l {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
