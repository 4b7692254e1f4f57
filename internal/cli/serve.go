package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sunnyzhifei/web-reader-ai/internal/config"
	"github.com/sunnyzhifei/web-reader-ai/internal/server"
	"github.com/sunnyzhifei/web-reader-ai/internal/storage"
	"github.com/sunnyzhifei/web-reader-ai/internal/task"
)

var (
	serveAddr    string
	serveOutput  string
	serveHistory string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crawl API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := config.Default()
		base.OutputDir = serveOutput

		history := serveHistory
		if history == "" {
			history = filepath.Join(serveOutput, "history.db")
		}
		store, err := storage.Open(history)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer store.Close()

		manager := task.NewManager(task.NewRegistry(), store, slog.Default())
		return server.New(manager, base, slog.Default()).Start(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "Listen address")
	serveCmd.Flags().StringVar(&serveOutput, "output", "./output", "Output root directory")
	serveCmd.Flags().StringVar(&serveHistory, "history", "", "SQLite file recording completed runs (default <output>/history.db)")
}
