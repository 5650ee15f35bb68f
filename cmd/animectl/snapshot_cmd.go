package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nimelist/nimelist-server/internal/catalog"
)

var snapshotDir string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Refresh the local fallback files from Jikan",
	Long: `Snapshot fetches the top anime, the current season and the top
characters from Jikan and writes them as the three fallback files the
catalog reads when the API is unavailable. Nothing is written unless all
three requests succeed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := snapshotDir
		if dir == "" {
			dir = app.Config.Catalog.SnapshotPath
		}
		cfg := app.Config.Jikan
		res, err := catalog.WriteSnapshots(cmd.Context(), app.Jikan, dir, catalog.Limits{
			TopAnime:   cfg.TopAnimeLimit,
			Season:     cfg.SeasonLimit,
			Characters: cfg.CharactersLimit,
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, view{
			data:    res,
			headers: []string{"Directory", "Anime", "Seasons", "Characters"},
			rows:    [][]string{{res.Dir, strconv.Itoa(res.Anime), strconv.Itoa(res.Seasons), strconv.Itoa(res.Characters)}},
		})
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDir, "dir", "", "Target directory (default: the configured snapshot path)")
}
