package query

import (
	"slices"
	"time"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// byStartAsc orders by air start, unknown dates last.
func byStartAsc(a, b domain.AnimeRecord) int {
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
	return as.Compare(bs)
}

// TopUpcoming returns up to limit records whose air start is strictly after
// now, soonest first. Records without a start date are excluded.
func TopUpcoming(list []domain.AnimeRecord, now time.Time, limit int) []domain.AnimeRecord {
	upcoming := filter(list, func(a domain.AnimeRecord) bool {
		start, ok := a.Start()
		return ok && start.After(now)
	})
	slices.SortStableFunc(upcoming, byStartAsc)
	return truncate(upcoming, limit)
}

// UpcomingSchedule returns every record that has not started airing: those
// the source marks as not yet aired plus those starting after now. Results
// are soonest first with unknown dates last.
func UpcomingSchedule(list []domain.AnimeRecord, now time.Time) []domain.AnimeRecord {
	upcoming := filter(list, func(a domain.AnimeRecord) bool {
		if a.Status == domain.StatusNotYetAired {
			return true
		}
		start, ok := a.Start()
		return ok && start.After(now)
	})
	slices.SortStableFunc(upcoming, byStartAsc)
	return upcoming
}

// InSeason returns the records whose air start falls in the given
// season-year, in catalog order. See domain.SeasonOf for the December rule.
func InSeason(list []domain.AnimeRecord, season domain.Season, year int) []domain.AnimeRecord {
	return filter(list, func(a domain.AnimeRecord) bool {
		start, ok := a.Start()
		if !ok {
			return false
		}
		s, y := domain.SeasonOf(start)
		return s == season && y == year
	})
}

// Seasonal returns the best scored records of a season-year.
func Seasonal(list []domain.AnimeRecord, season domain.Season, year int, limit int) []domain.AnimeRecord {
	return TopByScore(InSeason(list, season, year), limit)
}
