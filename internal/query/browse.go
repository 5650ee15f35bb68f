package query

import (
	"fmt"
	"strings"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// BrowseStatus is the airing-state filter offered by the browse view.
type BrowseStatus string

// Browse status filters.
const (
	BrowseAiring   BrowseStatus = "airing"
	BrowseComplete BrowseStatus = "complete"
	BrowseUpcoming BrowseStatus = "upcoming"
)

// SortKey selects the browse ordering.
type SortKey string

// Browse orderings. Popularity is member count.
const (
	SortScore      SortKey = "score"
	SortPopularity SortKey = "popularity"
	SortFavorites  SortKey = "favorites"
	SortNewest     SortKey = "newest"
)

// BrowseFilter holds the browse view's selections. Zero fields do not
// filter; the zero Sort is SortScore.
type BrowseFilter struct {
	Type   domain.AnimeType
	Status BrowseStatus
	Genre  string
	Sort   SortKey
	Limit  int
}

// Validate rejects unknown status and sort values.
func (f BrowseFilter) Validate() error {
	switch f.Status {
	case "", BrowseAiring, BrowseComplete, BrowseUpcoming:
	default:
		return fmt.Errorf("unknown status filter %q", f.Status)
	}
	switch f.Sort {
	case "", SortScore, SortPopularity, SortFavorites, SortNewest:
	default:
		return fmt.Errorf("unknown sort %q", f.Sort)
	}
	return nil
}

func (s BrowseStatus) upstream() string {
	switch s {
	case BrowseAiring:
		return domain.StatusCurrentlyAiring
	case BrowseComplete:
		return domain.StatusFinishedAiring
	case BrowseUpcoming:
		return domain.StatusNotYetAired
	}
	return ""
}

// byStartDesc orders newest first, unknown dates last.
func byStartDesc(a, b domain.AnimeRecord) int {
	as, aok := a.Start()
	bs, bok := b.Start()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return bs.Compare(as)
}

// Browse filters by type, status and genre, then orders by f.Sort. A zero
// Limit returns every match.
func Browse(list []domain.AnimeRecord, f BrowseFilter) []domain.AnimeRecord {
	status := f.Status.upstream()
	matches := filter(list, func(a domain.AnimeRecord) bool {
		if f.Type != "" && a.Type != f.Type {
			return false
		}
		if status != "" && a.Status != status {
			return false
		}
		if f.Genre != "" && !hasGenreFold(a, f.Genre) {
			return false
		}
		return true
	})

	limit := f.Limit
	if limit <= 0 {
		limit = NoLimit
	}

	switch f.Sort {
	case SortPopularity:
		return rank(matches, limit, byMembersDesc)
	case SortFavorites:
		return rank(matches, limit, byFavoritesDesc)
	case SortNewest:
		return rank(matches, limit, byStartDesc)
	default:
		return rank(matches, limit, byScoreDesc)
	}
}

func hasGenreFold(a domain.AnimeRecord, name string) bool {
	for _, g := range a.Genres {
		if strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}
