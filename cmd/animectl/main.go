// Package main provides animectl, a command line client for the anime
// catalog and the personal watch-list.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	outputFormat string
	envFile      string
	logLevel     string
	dataPath     string
	snapshotPath string
	storeBackend string
	jikanURL     string

	app *App
)

var rootCmd = &cobra.Command{
	Use:   "animectl",
	Short: "Browse the anime catalog and manage your watch-list",
	Long: `animectl reads the same catalog as the Nimelist server: the Jikan API
first, the local snapshot files when the API is unavailable.

The watch-list is stored in the same record store the server uses, so
changes made here show up in the server and the other way around.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(outputFormat); err != nil {
			return err
		}
		var err error
		app, err = NewApp(cmd.Context(), AppOptions{
			EnvFile: envFile,
			Overrides: map[string]string{
				"LOG_LEVEL":      logLevel,
				"DATA_PATH":      dataPath,
				"SNAPSHOT_PATH":  snapshotPath,
				"STORE_BACKEND":  storeBackend,
				"JIKAN_BASE_URL": jikanURL,
			},
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
	flags.StringVar(&envFile, "env-file", ".env", "Path to .env file")
	flags.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&dataPath, "data-path", "", "Directory holding the watch-list store")
	flags.StringVar(&snapshotPath, "snapshot-path", "", "Directory with local fallback snapshots")
	flags.StringVar(&storeBackend, "store", "", "Record store backend (badger, sqlite)")
	flags.StringVar(&jikanURL, "jikan-url", "", "Jikan API base URL")

	rootCmd.AddCommand(catalogCommands()...)
	rootCmd.AddCommand(searchCmd, listCmd, addCmd, removeCmd, snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
