package domain

import (
	"fmt"
	"strings"
	"time"
)

// Season is one of the four broadcast seasons.
type Season string

// Broadcast seasons.
const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// Seasons lists the seasons in calendar order of a season-year.
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}

// ParseSeason parses a season name case-insensitively. "autumn" is accepted
// for fall.
func ParseSeason(s string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "winter":
		return SeasonWinter, nil
	case "spring":
		return SeasonSpring, nil
	case "summer":
		return SeasonSummer, nil
	case "fall", "autumn":
		return SeasonFall, nil
	default:
		return "", fmt.Errorf("unknown season %q", s)
	}
}

// Title returns the capitalized season name.
func (s Season) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// SeasonOf returns the season and season-year a date falls in. Seasons are
// Winter Dec-Feb, Spring Mar-May, Summer Jun-Aug and Fall Sep-Nov.
//
// December belongs to the following season-year: 2024-12-15 is Winter 2025,
// as are 2025-01-10 and 2025-02-28.
func SeasonOf(t time.Time) (Season, int) {
	t = t.UTC()
	year := t.Year()
	switch t.Month() {
	case time.December:
		return SeasonWinter, year + 1
	case time.January, time.February:
		return SeasonWinter, year
	case time.March, time.April, time.May:
		return SeasonSpring, year
	case time.June, time.July, time.August:
		return SeasonSummer, year
	default:
		return SeasonFall, year
	}
}

// SeasonWindow returns the half-open [start, end) interval covered by a
// season-year, in UTC.
func SeasonWindow(s Season, year int) (time.Time, time.Time) {
	var start time.Time
	switch s {
	case SeasonWinter:
		start = time.Date(year-1, time.December, 1, 0, 0, 0, 0, time.UTC)
	case SeasonSpring:
		start = time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	case SeasonSummer:
		start = time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	default:
		start = time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	}
	return start, start.AddDate(0, 3, 0)
}
