package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimelist/nimelist-server/internal/domain"
	"github.com/nimelist/nimelist-server/internal/service"
)

var (
	listStatus string
	listCounts bool
	addStatus  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the watch-list",
	Long: `List prints the watch-list in insertion order. With --status only the
entries with that status are shown; --counts prints the per-status totals
instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wl, err := app.WatchList()
		if err != nil {
			return err
		}
		if listCounts {
			counts, err := wl.Counts(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, countsView(counts))
		}
		entries, err := wl.List(cmd.Context(), listStatus)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, watchListView(entries))
	},
}

var addCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add an anime to the watch-list or change its status",
	Long: `Add looks the anime up in the catalog and stores it with the given
status. An entry that already exists keeps its position and only changes
status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		wl, err := app.WatchList()
		if err != nil {
			return err
		}
		entry, err := wl.Upsert(cmd.Context(), service.UpsertWatchRequest{
			AnimeID: id,
			Status:  domain.WatchStatus(addStatus),
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), outputFormat, watchListView([]domain.WatchListEntry{entry}))
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an anime from the watch-list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		wl, err := app.WatchList()
		if err != nil {
			return err
		}
		if err := wl.Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d\n", id)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only entries with this status (watching, completed, planning, dropped)")
	listCmd.Flags().BoolVar(&listCounts, "counts", false, "Print per-status totals")
	addCmd.Flags().StringVar(&addStatus, "status", string(domain.StatusPlanning), "Watch status (watching, completed, planning, dropped)")
}
