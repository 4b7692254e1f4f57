package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sunnyzhifei/web-reader-ai/internal/config"
	"github.com/sunnyzhifei/web-reader-ai/internal/crawler"
	"github.com/sunnyzhifei/web-reader-ai/internal/export"
	"github.com/sunnyzhifei/web-reader-ai/internal/fetch"
	"github.com/sunnyzhifei/web-reader-ai/internal/httpclient"
	"github.com/sunnyzhifei/web-reader-ai/internal/identity"
	"github.com/sunnyzhifei/web-reader-ai/internal/rewrite"
	"github.com/sunnyzhifei/web-reader-ai/internal/storage"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// previewPageCap bounds preview-mode crawls regardless of the
// requested page budget.
const previewPageCap = 3

var ErrNoArchive = errors.New("no archive for task")

// RendererFactory builds the page renderer for one run. Injectable so
// tests can substitute a stub for the headless browser.
type RendererFactory func(poolSize int, renderWait time.Duration) (fetch.Renderer, error)

func chromeFactory(poolSize int, renderWait time.Duration) (fetch.Renderer, error) {
	return fetch.NewChromeRenderer(poolSize, renderWait)
}

// Manager owns the submit/status/download lifecycle of crawl tasks.
// Each accepted task runs in its own goroutine; the registry is the
// only shared state.
type Manager struct {
	registry  *Registry
	store     *storage.Store
	resolver  *identity.Resolver
	renderers RendererFactory
	logger    *slog.Logger
}

// NewManager builds a task manager. store may be nil to disable crawl
// history persistence.
func NewManager(registry *Registry, store *storage.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:  registry,
		store:     store,
		resolver:  identity.NewResolver(),
		renderers: chromeFactory,
		logger:    logger,
	}
}

// WithRendererFactory replaces the headless browser with a custom
// renderer source. Used by tests.
func (m *Manager) WithRendererFactory(f RendererFactory) *Manager {
	m.renderers = f
	return m
}

// CreateTask validates the configuration, registers a queued task and
// starts its run in the background.
func (m *Manager) CreateTask(cfg config.Config, mode types.Mode) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if mode == types.ModePreview && cfg.MaxPages > previewPageCap {
		cfg.MaxPages = previewPageCap
	}

	id := uuid.New().String()
	m.registry.Add(&Task{
		ID:      id,
		Mode:    mode,
		SeedURL: cfg.SeedURL,
		Status:  StatusQueued,
	})

	go m.run(id, cfg, mode)

	m.logger.Info("task accepted", "task", id, "seed", cfg.SeedURL, "mode", mode)
	return id, nil
}

// GetStatus returns the current task snapshot.
func (m *Manager) GetStatus(taskID string) (Snapshot, error) {
	return m.registry.Snapshot(taskID)
}

// WriteArchive streams the result directory of a completed full-mode
// task as a zip archive.
func (m *Manager) WriteArchive(taskID string, w io.Writer) error {
	snap, err := m.registry.Snapshot(taskID)
	if err != nil {
		return err
	}
	if snap.Mode != types.ModeFull || snap.Status != StatusCompleted || snap.ResultDir == "" {
		return ErrNoArchive
	}
	return export.Archive(snap.ResultDir, w)
}

func (m *Manager) run(taskID string, cfg config.Config, mode types.Mode) {
	ctx := context.Background()

	var renderer fetch.Renderer
	if cfg.NoRender {
		renderer = fetch.NewPlainRenderer(httpclient.New(cfg.Timeout))
	} else {
		var err error
		renderer, err = m.renderers(cfg.Concurrency, cfg.RenderWait)
		if err != nil {
			m.fail(taskID, fmt.Errorf("failed to start renderer: %w", err))
			return
		}
	}
	defer renderer.Close()

	fetcher := fetch.NewFetcher(renderer, cfg.Timeout, cfg.Delay, m.logger)

	var client *httpclient.Client
	if cfg.RespectRobots {
		client = httpclient.New(cfg.Timeout)
	}

	c, err := crawler.New(cfg, fetcher, m.resolver, client, m.logger)
	if err != nil {
		m.fail(taskID, err)
		return
	}

	m.registry.Update(taskID, func(t *Task) {
		t.Status = StatusRunning
		t.progress = c.Progress
	})

	result, err := c.Run(ctx)
	if err != nil {
		m.fail(taskID, err)
		return
	}
	if len(result.Pages) == 0 {
		err := errors.New("no pages retrieved")
		if len(result.Failed) > 0 {
			err = fmt.Errorf("no pages retrieved: %s", result.Failed[0].Error)
		}
		m.fail(taskID, err)
		return
	}

	if mode == types.ModePreview {
		summaries := result.Summaries()
		m.registry.Update(taskID, func(t *Task) {
			t.Status = StatusCompleted
			t.Preview = summaries
			t.PageCount = len(result.Pages)
			t.progress = nil
		})
		m.logger.Info("preview finished", "task", taskID, "pages", len(result.Pages))
		return
	}

	rewrite.AssignFilenames(result.Pages, cfg.OutputFormat)
	rewrite.Rewrite(result.Pages, m.resolver)

	writer := export.NewWriter(cfg.OutputDir, cfg.OutputFormat)
	dir, err := writer.Write(taskID, cfg.SeedURL, result.Pages)
	if err != nil {
		m.fail(taskID, fmt.Errorf("failed to write result: %w", err))
		return
	}

	m.registry.Update(taskID, func(t *Task) {
		t.Status = StatusCompleted
		t.ResultDir = dir
		t.PageCount = len(result.Pages)
		t.progress = nil
	})
	m.logger.Info("crawl finished", "task", taskID,
		"pages", len(result.Pages), "failed", len(result.Failed), "dir", dir)

	m.saveRun(taskID, cfg, mode, result, dir)
}

func (m *Manager) fail(taskID string, err error) {
	m.logger.Error("task failed", "task", taskID, "error", err)
	m.registry.Update(taskID, func(t *Task) {
		t.Status = StatusFailed
		t.Error = err.Error()
		t.progress = nil
	})
}

func (m *Manager) saveRun(taskID string, cfg config.Config, mode types.Mode, result *types.CrawlResult, dir string) {
	if m.store == nil {
		return
	}
	run := storage.Run{
		TaskID:      taskID,
		SeedURL:     cfg.SeedURL,
		Mode:        string(mode),
		Status:      string(StatusCompleted),
		PageCount:   len(result.Pages),
		FailedCount: len(result.Failed),
		ResultDir:   dir,
		CompletedAt: time.Now(),
	}
	if err := m.store.SaveRun(run, result.Pages); err != nil {
		m.logger.Warn("failed to record run", "task", taskID, "error", err)
	}
}
