package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/query"
	"github.com/nimelist/nimelist-server/internal/service"
)

type rankedCommand struct {
	use, short string
	fetch      func(*service.CatalogService, context.Context, int) ([]domain.AnimeRecord, error)
}

var rankedCommands = []rankedCommand{
	{"top", "Highest scored anime", (*service.CatalogService).TopAnime},
	{"airing", "Highest scored anime currently airing", (*service.CatalogService).TopAiring},
	{"upcoming", "Not yet aired anime, soonest first", (*service.CatalogService).TopUpcoming},
	{"movies", "Highest scored movies", (*service.CatalogService).TopMovies},
	{"popular", "Anime with the most members", (*service.CatalogService).MostPopular},
	{"favorited", "Anime with the most favorites", (*service.CatalogService).MostFavorited},
}

var (
	seasonName   string
	seasonYear   int
	seasonLimit  int
	browseType   string
	browseStatus string
	browseGenre  string
	browseSort   string
	browseLimit  int
	scheduleLang string
	charLimit    int
)

var animeCmd = &cobra.Command{
	Use:   "anime <id>",
	Short: "Show one anime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := app.Catalog.Anime(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, animeDetailView(a))
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Filter and sort the whole catalog",
	Long: `Browse narrows the catalog by format, airing status and genre, then
sorts it. Popularity sorts by member count.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.Catalog.Browse(cmd.Context(), query.BrowseFilter{
			Type:   domain.AnimeType(browseType),
			Status: query.BrowseStatus(browseStatus),
			Genre:  browseGenre,
			Sort:   query.SortKey(browseSort),
			Limit:  browseLimit,
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, animeView(list))
	},
}

var seasonalCmd = &cobra.Command{
	Use:   "seasonal",
	Short: "Anime starting in a broadcast season",
	Long: `Seasonal lists the anime whose air start date falls inside the season
window. December belongs to the following year's winter. Without flags
the current season is shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var season domain.Season
		if seasonName != "" {
			var err error
			if season, err = domain.ParseSeason(seasonName); err != nil {
				return err
			}
		}
		list, err := app.Catalog.Seasonal(cmd.Context(), season, seasonYear, seasonLimit)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, animeView(list))
	},
}

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "Characters with the most favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.Catalog.TopCharacters(cmd.Context(), charLimit)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, characterView(list))
	},
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "Genres with their title counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := app.Catalog.Genres(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, genreView(list))
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Upcoming releases grouped by month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := service.ScheduleOptions{Locale: scheduleLang, Year: seasonYear}
		if seasonName != "" {
			season, err := domain.ParseSeason(seasonName)
			if err != nil {
				return err
			}
			opts.Season = season
		}
		groups, err := app.Catalog.Schedule(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, scheduleView(groups))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Load the catalog and report where it came from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.Catalog.Catalog(cmd.Context()); err != nil {
			return err
		}
		st := app.Catalog.Status()
		return render(cmd.OutOrStdout(), outputFormat, view{
			data:    st,
			headers: []string{"Source", "Load ID", "Anime", "Characters"},
			rows:    [][]string{{string(st.Source), st.LoadID, strconv.Itoa(st.Anime), strconv.Itoa(st.Characters)}},
		})
	},
}

func init() {
	seasonalCmd.Flags().StringVar(&seasonName, "season", "", "Season (winter, spring, summer, fall)")
	seasonalCmd.Flags().IntVar(&seasonYear, "year", 0, "Season year (default: the season's current or next occurrence)")
	seasonalCmd.Flags().IntVarP(&seasonLimit, "limit", "n", 10, "Maximum results (-1 for all)")

	scheduleCmd.Flags().StringVar(&seasonName, "season", "", "Only releases in this season")
	scheduleCmd.Flags().IntVar(&seasonYear, "year", 0, "Season year")
	scheduleCmd.Flags().StringVar(&scheduleLang, "locale", "en", "Locale for month labels (en, id, ja, de, ...)")

	browseCmd.Flags().StringVar(&browseType, "type", "", "Format (TV, Movie, OVA, Special, ONA, Music)")
	browseCmd.Flags().StringVar(&browseStatus, "status", "", "Airing status (airing, complete, upcoming)")
	browseCmd.Flags().StringVar(&browseGenre, "genre", "", "Genre name")
	browseCmd.Flags().StringVar(&browseSort, "sort", "score", "Order (score, popularity, favorites, newest)")
	browseCmd.Flags().IntVarP(&browseLimit, "limit", "n", 0, "Maximum results (0 for all)")

	charactersCmd.Flags().IntVarP(&charLimit, "limit", "n", 10, "Maximum results (-1 for all)")
}

// catalogCommands returns every read-only catalog command.
func catalogCommands() []*cobra.Command {
	cmds := []*cobra.Command{animeCmd, browseCmd, seasonalCmd, charactersCmd, genresCmd, scheduleCmd, statusCmd}
	for _, rc := range rankedCommands {
		cmds = append(cmds, newRankedCommand(rc))
	}
	return cmds
}

func newRankedCommand(rc rankedCommand) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   rc.use,
		Short: rc.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := rc.fetch(app.Catalog, cmd.Context(), limit)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, animeView(list))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results (-1 for all)")
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid anime id %q", s)
	}
	return id, nil
}
