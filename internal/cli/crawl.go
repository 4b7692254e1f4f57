package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunnyzhifei/web-reader-ai/internal/config"
	"github.com/sunnyzhifei/web-reader-ai/internal/storage"
	"github.com/sunnyzhifei/web-reader-ai/internal/task"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

var (
	depth        int
	maxPages     int
	format       string
	outputDir    string
	delay        float64
	timeoutSecs  int
	noSameDomain bool
	noRobots     bool
	noRender     bool
	concurrency  int
	historyPath  string
	previewOnly  bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a site once and write the result directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		cfg.SeedURL = args[0]
		cfg.MaxDepth = depth
		cfg.MaxPages = maxPages
		cfg.OutputFormat = types.OutputFormat(format)
		cfg.OutputDir = outputDir
		cfg.Delay = time.Duration(delay * float64(time.Second))
		cfg.Timeout = time.Duration(timeoutSecs) * time.Second
		cfg.SameDomainOnly = !noSameDomain
		cfg.RespectRobots = !noRobots
		cfg.NoRender = noRender
		cfg.Concurrency = concurrency

		var store *storage.Store
		if historyPath != "" {
			var err error
			store, err = storage.Open(historyPath)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()
		}

		mode := types.ModeFull
		if previewOnly {
			mode = types.ModePreview
		}

		manager := task.NewManager(task.NewRegistry(), store, slog.Default())
		id, err := manager.CreateTask(cfg, mode)
		if err != nil {
			return err
		}

		snap, err := watch(manager, id)
		if err != nil {
			return err
		}

		if mode == types.ModePreview {
			for i, p := range snap.Preview {
				fmt.Printf("%d. %s\n   %s\n   %s\n", i+1, p.Title, p.URL, p.Preview)
			}
			return nil
		}
		fmt.Printf("Crawl completed: %d pages -> %s\n", snap.PageCount, snap.ResultDir)
		return nil
	},
}

// watch polls the task until it reaches a terminal state, echoing
// traversal progress.
func watch(manager *task.Manager, id string) (task.Snapshot, error) {
	var last string
	for {
		snap, err := manager.GetStatus(id)
		if err != nil {
			return task.Snapshot{}, err
		}
		switch snap.Status {
		case task.StatusCompleted:
			return snap, nil
		case task.StatusFailed:
			return task.Snapshot{}, fmt.Errorf("crawl failed: %s", snap.Error)
		}
		if p := snap.Progress; p != nil && p.URL != last {
			last = p.URL
			fmt.Printf("[%d/%d] %s\n", p.Fetched, p.Total, p.URL)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func init() {
	crawlCmd.Flags().IntVar(&depth, "depth", 1, "Maximum recursion depth (0 = seed page only)")
	crawlCmd.Flags().IntVar(&maxPages, "max-pages", 50, "Maximum number of pages to fetch")
	crawlCmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown/json/txt")
	crawlCmd.Flags().StringVar(&outputDir, "output", "./output", "Output root directory")
	crawlCmd.Flags().Float64Var(&delay, "delay", 1.0, "Delay between requests in seconds")
	crawlCmd.Flags().IntVar(&timeoutSecs, "timeout", 30, "Page load timeout in seconds")
	crawlCmd.Flags().BoolVar(&noSameDomain, "no-same-domain", false, "Allow following links to other domains")
	crawlCmd.Flags().BoolVar(&noRobots, "ignore-robots", false, "Skip the robots.txt check")
	crawlCmd.Flags().BoolVar(&noRender, "no-render", false, "Fetch with plain HTTP instead of headless Chrome")
	crawlCmd.Flags().IntVar(&concurrency, "concurrency", 2, "Concurrent page fetches")
	crawlCmd.Flags().StringVar(&historyPath, "history", "", "SQLite file recording completed runs")
	crawlCmd.Flags().BoolVar(&previewOnly, "preview", false, "Fetch a few pages and print summaries instead of writing files")
}
