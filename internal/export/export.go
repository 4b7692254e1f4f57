// Package export writes the result directory for a completed crawl:
// one file per page plus an index.md, in a layout note-taking tools can
// import directly.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/markdown"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// Writer materializes crawl results under a root directory, one
// subdirectory per task.
type Writer struct {
	root   string
	format types.OutputFormat
}

func NewWriter(root string, format types.OutputFormat) *Writer {
	return &Writer{root: root, format: format}
}

// Write creates the task's result directory and writes every page file
// and the index. Pages must already have filenames assigned. Returns
// the directory path.
func (w *Writer) Write(taskID, seedURL string, pages []*types.PageRecord) (string, error) {
	dir := filepath.Join(w.root, taskID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating result directory: %w", err)
	}

	for _, p := range pages {
		if p.Filename == "" {
			return "", fmt.Errorf("page %s has no assigned filename", p.URL)
		}
		body, err := w.renderPage(p)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, p.Filename), body, 0644); err != nil {
			return "", fmt.Errorf("writing %s: %w", p.Filename, err)
		}
	}

	if err := w.writeIndex(dir, seedURL, pages); err != nil {
		return "", err
	}
	return dir, nil
}

func (w *Writer) renderPage(p *types.PageRecord) ([]byte, error) {
	switch w.format {
	case types.FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	case types.FormatText:
		header := fmt.Sprintf("Title: %s\nURL: %s\nFetched: %s\n%s\n\n",
			p.Title, p.URL, p.FetchedAt.Format(time.DateTime), divider)
		return []byte(header + p.Markdown), nil
	default:
		header := fmt.Sprintf("# %s\n\n> **URL:** %s\n> **Fetched:** %s\n\n---\n\n",
			p.Title, p.URL, p.FetchedAt.Format(time.DateTime))
		return []byte(header + p.Markdown), nil
	}
}

const divider = "=================================================="

// writeIndex produces index.md: crawl metadata plus the ordered page
// list with relative links.
func (w *Writer) writeIndex(dir, seedURL string, pages []*types.PageRecord) error {
	f, err := os.Create(filepath.Join(dir, "index.md"))
	if err != nil {
		return fmt.Errorf("creating index.md: %w", err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1("Crawl Index")
	md.PlainText("")
	md.PlainTextf("**Date:** %s", time.Now().Format(time.DateTime))
	md.PlainTextf("**Seed URL:** %s", seedURL)
	md.PlainTextf("**Pages:** %d", len(pages))
	md.PlainText("")
	md.HorizontalRule()
	md.H2("Pages")
	md.PlainText("")
	for i, p := range pages {
		md.PlainTextf("%d. [%s](./%s)", i+1, p.Title, p.Filename)
		md.PlainTextf("   - URL: %s", p.URL)
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("writing index.md: %w", err)
	}
	return nil
}
