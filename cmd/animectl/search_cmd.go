package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nimelist/nimelist-server/internal/search"
	"github.com/nimelist/nimelist-server/internal/service"
)

var (
	searchLive     bool
	searchFullText bool
	searchTypes    []string
	searchGenres   []string
	searchLimit    int
	searchSort     string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search anime titles",
	Long: `Search matches the query against anime titles, case-insensitively.

With --fulltext the query runs against the full-text index instead, which
also covers synopses and characters. With --live each line read from
stdin is treated as the current input of a search box: lines arriving
within the debounce window collapse into one search, and only the newest
query's results are printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchLive {
			return runLiveSearch(cmd.InOrStdin(), cmd.OutOrStdout())
		}
		q := ""
		if len(args) == 1 {
			q = args[0]
		}

		if searchFullText {
			params := search.DefaultParams()
			params.Query = q
			params.Genres = searchGenres
			params.Limit = searchLimit
			params.SortBy = searchSort
			params.IncludeFacets = false
			for _, t := range searchTypes {
				params.Types = append(params.Types, search.DocType(t))
			}
			res, err := app.Search.Search(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, searchView(res))
		}

		list, err := app.Catalog.SearchTitles(cmd.Context(), q)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, animeView(list))
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchLive, "live", false, "Read queries from stdin as they are typed")
	searchCmd.Flags().BoolVar(&searchFullText, "fulltext", false, "Use the full-text index")
	searchCmd.Flags().StringSliceVar(&searchTypes, "types", nil, "Document types for --fulltext (anime, character)")
	searchCmd.Flags().StringSliceVar(&searchGenres, "genres", nil, "Genre filter for --fulltext")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum hits for --fulltext")
	searchCmd.Flags().StringVar(&searchSort, "sort", search.SortRelevance, "Order for --fulltext (relevance, score, popularity, year, title)")
}

// runLiveSearch feeds each stdin line to a live search session. The last
// pending query is flushed at EOF so piped input always yields a result.
func runLiveSearch(in io.Reader, out io.Writer) error {
	var mu sync.Mutex
	var renderErr error
	deliver := func(res service.LiveResult) {
		mu.Lock()
		defer mu.Unlock()
		if res.Err != nil {
			fmt.Fprintf(out, "search %q failed: %v\n", res.Query, res.Err)
			return
		}
		fmt.Fprintf(out, "> %s\n", res.Query)
		if err := render(out, outputFormat, animeView(res.Results)); err != nil && renderErr == nil {
			renderErr = err
		}
	}

	ls := service.NewLiveSearch(app.Catalog, app.Config.Search.Debounce, deliver, app.Log.Component("live_search").Logger)
	defer ls.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		ls.Query(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	ls.Flush()

	mu.Lock()
	defer mu.Unlock()
	return renderErr
}
