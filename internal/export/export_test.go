package export

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

func samplePages() []*types.PageRecord {
	return []*types.PageRecord{
		{
			URL:       "https://example.com/a",
			Title:     "First",
			Markdown:  "# First\n\nbody A",
			Filename:  "001_First.md",
			FetchedAt: time.Now(),
		},
		{
			URL:       "https://example.com/b",
			Title:     "Second",
			Markdown:  "body B with [link](./001_First.md)",
			Filename:  "002_Second.md",
			FetchedAt: time.Now(),
		},
	}
}

func TestWriteLayout(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, types.FormatMarkdown)

	dir, err := w.Write("task-1", "https://example.com/a", samplePages())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if dir != filepath.Join(root, "task-1") {
		t.Errorf("unexpected dir %q", dir)
	}

	for _, name := range []string{"index.md", "001_First.md", "002_Second.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestWritePageHeader(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, types.FormatMarkdown)

	dir, err := w.Write("t", "https://example.com/a", samplePages())
	if err != nil {
		t.Fatal(err)
	}

	body, err := os.ReadFile(filepath.Join(dir, "001_First.md"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(body)
	if !strings.HasPrefix(s, "# First\n") {
		t.Errorf("page should start with title heading:\n%s", s)
	}
	if !strings.Contains(s, "> **URL:** https://example.com/a") {
		t.Errorf("page missing URL header:\n%s", s)
	}
	if !strings.Contains(s, "body A") {
		t.Errorf("page missing body:\n%s", s)
	}
}

func TestIndexListsPagesInOrder(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, types.FormatMarkdown)

	dir, err := w.Write("t", "https://example.com/a", samplePages())
	if err != nil {
		t.Fatal(err)
	}

	body, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(body)
	first := strings.Index(s, "1. [First](./001_First.md)")
	second := strings.Index(s, "2. [Second](./002_Second.md)")
	if first == -1 || second == -1 {
		t.Fatalf("index missing entries:\n%s", s)
	}
	if first > second {
		t.Errorf("index entries out of discovery order:\n%s", s)
	}
	if !strings.Contains(s, "**Seed URL:** https://example.com/a") {
		t.Errorf("index missing seed URL:\n%s", s)
	}
}

func TestWriteJSONFormat(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, types.FormatJSON)

	pages := samplePages()
	pages[0].Filename = "001_First.json"
	pages[1].Filename = "002_Second.json"

	dir, err := w.Write("t", "https://example.com/a", pages)
	if err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(filepath.Join(dir, "001_First.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"url": "https://example.com/a"`) {
		t.Errorf("json page missing url field:\n%s", body)
	}
}

func TestWriteRequiresFilenames(t *testing.T) {
	w := NewWriter(t.TempDir(), types.FormatMarkdown)
	pages := samplePages()
	pages[0].Filename = ""

	if _, err := w.Write("t", "https://example.com/a", pages); err == nil {
		t.Error("expected error for page without filename")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, types.FormatMarkdown)
	dir, err := w.Write("t", "https://example.com/a", samplePages())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Archive(dir, &buf); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"index.md", "001_First.md", "002_Second.md"} {
		if !names[want] {
			t.Errorf("archive missing %s, has %v", want, names)
		}
	}
}
