// Package cli wires the crawl and serve commands.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "webreader",
	Short: "Crawl JavaScript-rendered document sites into local Markdown",
	Long: `WebReader renders pages in headless Chrome, extracts the main content
as Markdown and rewrites internal links so the result reads offline.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(serveCmd)
}
