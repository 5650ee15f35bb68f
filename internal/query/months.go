package query

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/nimelist/nimelist-server/internal/domain"
)

// MonthGroup is a release-month bucket. Known is false for the bucket of
// records without an air start date.
type MonthGroup struct {
	Label string               `json:"label"`
	Year  int                  `json:"year,omitempty"`
	Month time.Month           `json:"month,omitempty"`
	Known bool                 `json:"known"`
	Anime []domain.AnimeRecord `json:"anime"`
}

type monthLocale struct {
	tag     language.Tag
	months  [12]string
	unknown string
	label   func(month string, year int) string
}

func monthThenYear(month string, year int) string { return fmt.Sprintf("%s %d", month, year) }

// monthLocales lists the supported label languages. The first entry is the
// fallback for unsupported locales.
var monthLocales = []monthLocale{
	{
		tag:     language.English,
		months:  [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		unknown: "Unknown date",
		label:   monthThenYear,
	},
	{
		tag:     language.Indonesian,
		months:  [12]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
		unknown: "Tanggal Tidak Diketahui",
		label:   monthThenYear,
	},
	{
		tag:     language.Japanese,
		months:  [12]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"},
		unknown: "日付不明",
		label:   func(month string, year int) string { return fmt.Sprintf("%d年%s", year, month) },
	},
	{
		tag:     language.German,
		months:  [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		unknown: "Unbekanntes Datum",
		label:   monthThenYear,
	},
	{
		tag:     language.French,
		months:  [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		unknown: "Date inconnue",
		label:   monthThenYear,
	},
	{
		tag:     language.Spanish,
		months:  [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		unknown: "Fecha desconocida",
		label:   func(month string, year int) string { return fmt.Sprintf("%s de %d", month, year) },
	},
}

var monthMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(monthLocales))
	for i, l := range monthLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// resolveMonthLocale picks the best supported locale for a BCP 47 tag such
// as "id-ID" or "en-GB". Unparsable or unsupported tags get English.
func resolveMonthLocale(locale string) monthLocale {
	tag, err := language.Parse(locale)
	if err != nil {
		return monthLocales[0]
	}
	_, i, conf := monthMatcher.Match(tag)
	if conf == language.No {
		return monthLocales[0]
	}
	return monthLocales[i]
}

// MonthLabel formats a month and year for a locale.
func MonthLabel(locale string, year int, month time.Month) string {
	l := resolveMonthLocale(locale)
	return l.label(l.months[month-1], year)
}

// GroupByReleaseMonth buckets records by the calendar month (UTC) of their
// air start. Buckets are chronological with the unknown-date bucket last;
// records keep their input order within a bucket.
func GroupByReleaseMonth(list []domain.AnimeRecord, locale string) []MonthGroup {
	l := resolveMonthLocale(locale)

	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	groups := []MonthGroup{}
	var unknown []domain.AnimeRecord

	for _, a := range list {
		start, ok := a.Start()
		if !ok {
			unknown = append(unknown, a)
			continue
		}
		start = start.UTC()
		k := key{start.Year(), start.Month()}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, MonthGroup{
				Label: l.label(l.months[k.month-1], k.year),
				Year:  k.year,
				Month: k.month,
				Known: true,
			})
		}
		groups[i].Anime = append(groups[i].Anime, a)
	}

	groups = rank(groups, NoLimit, func(a, b MonthGroup) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return int(a.Month) - int(b.Month)
	})

	if len(unknown) > 0 {
		groups = append(groups, MonthGroup{Label: l.unknown, Anime: unknown})
	}
	return groups
}
