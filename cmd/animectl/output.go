package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/query"
	"github.com/nimelist/nimelist-server/internal/search"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func validateOutput(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// view is a value with a tabular rendering.
type view struct {
	data    any
	headers []string
	rows    [][]string
}

func render(w io.Writer, format string, v view) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v.data)
	case formatYAML:
		// Round-trip through JSON so yaml keys follow the json tags.
		raw, err := json.Marshal(v.data)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(v.rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(v.headers...).
		Rows(v.rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func animeView(list []domain.AnimeRecord) view {
	rows := make([][]string, len(list))
	for i, a := range list {
		rows[i] = []string{
			strconv.Itoa(a.ID),
			truncateText(a.Title, 40),
			string(a.Type),
			formatScore(a.Score),
			strconv.Itoa(a.Members),
			formatEpisodes(a.Episodes),
			formatDate(a),
		}
	}
	return view{
		data:    list,
		headers: []string{"ID", "Title", "Type", "Score", "Members", "Eps", "Starts"},
		rows:    rows,
	}
}

func animeDetailView(a domain.AnimeRecord) view {
	genres := make([]string, len(a.Genres))
	for i, g := range a.Genres {
		genres[i] = g.Name
	}
	rows := [][]string{
		{"Title", a.Title},
		{"English", a.TitleEnglish},
		{"Japanese", a.TitleJapanese},
		{"Type", string(a.Type)},
		{"Status", a.Status},
		{"Score", formatScore(a.Score)},
		{"Members", strconv.Itoa(a.Members)},
		{"Episodes", formatEpisodes(a.Episodes)},
		{"Starts", formatDate(a)},
		{"Genres", strings.Join(genres, ", ")},
		{"Synopsis", truncateText(a.Synopsis, 120)},
	}
	return view{data: a, headers: []string{"Field", "Value"}, rows: rows}
}

func characterView(list []domain.CharacterRecord) view {
	rows := make([][]string, len(list))
	for i, c := range list {
		rows[i] = []string{strconv.Itoa(c.ID), c.Name, c.NameKanji, strconv.Itoa(c.Favorites)}
	}
	return view{data: list, headers: []string{"ID", "Name", "Kanji", "Favorites"}, rows: rows}
}

func genreView(list []query.GenreCount) view {
	rows := make([][]string, len(list))
	for i, g := range list {
		rows[i] = []string{g.Name, strconv.Itoa(g.Count)}
	}
	return view{data: list, headers: []string{"Genre", "Titles"}, rows: rows}
}

func scheduleView(groups []query.MonthGroup) view {
	var rows [][]string
	for _, g := range groups {
		for _, a := range g.Anime {
			rows = append(rows, []string{g.Label, strconv.Itoa(a.ID), truncateText(a.Title, 40), string(a.Type)})
		}
	}
	return view{data: groups, headers: []string{"Month", "ID", "Title", "Type"}, rows: rows}
}

func searchView(res *search.Result) view {
	rows := make([][]string, len(res.Hits))
	for i, h := range res.Hits {
		rows[i] = []string{
			h.ID,
			string(h.Type),
			truncateText(h.Name, 40),
			strconv.FormatFloat(h.Relevance, 'f', 3, 64),
		}
	}
	return view{data: res, headers: []string{"Doc", "Type", "Name", "Relevance"}, rows: rows}
}

func watchListView(entries []domain.WatchListEntry) view {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(e.Anime.ID),
			truncateText(e.Anime.Title, 40),
			string(e.Status),
			formatEpisodes(e.Anime.Episodes),
			e.AddedAt.Format("2006-01-02"),
		}
	}
	return view{data: entries, headers: []string{"ID", "Title", "Status", "Eps", "Added"}, rows: rows}
}

func countsView(c domain.WatchListCounts) view {
	return view{
		data:    c,
		headers: []string{"All", "Watching", "Completed", "Planning", "Dropped"},
		rows: [][]string{{
			strconv.Itoa(c.All),
			strconv.Itoa(c.Watching),
			strconv.Itoa(c.Completed),
			strconv.Itoa(c.Planning),
			strconv.Itoa(c.Dropped),
		}},
	}
}

func formatScore(score float64) string {
	if score == 0 {
		return "-"
	}
	return strconv.FormatFloat(score, 'f', 2, 64)
}

func formatEpisodes(n int) string {
	if n == 0 {
		return "?"
	}
	return strconv.Itoa(n)
}

func formatDate(a domain.AnimeRecord) string {
	start, ok := a.Start()
	if !ok {
		return "TBA"
	}
	return start.Format("2006-01-02")
}

func truncateText(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
