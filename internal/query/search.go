package query

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// SearchByTitle returns every record whose title, English title or Japanese
// title contains q, ignoring case. Results keep catalog order. A blank query
// matches nothing.
func SearchByTitle(list []domain.AnimeRecord, q string) []domain.AnimeRecord {
	// Casers carry state, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q))
	if needle == "" {
		return []domain.AnimeRecord{}
	}

	return filter(list, func(a domain.AnimeRecord) bool {
		for _, title := range []string{a.Title, a.TitleEnglish, a.TitleJapanese} {
			if title != "" && strings.Contains(fold.String(title), needle) {
				return true
			}
		}
		return false
	})
}
