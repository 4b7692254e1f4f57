package task

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/config"
	"github.com/sunnyzhifei/web-reader-ai/internal/fetch"
	"github.com/sunnyzhifei/web-reader-ai/internal/storage"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

type stubRenderer struct {
	pages map[string]string
	errs  map[string]error
}

func (s *stubRenderer) Render(_ context.Context, url string, _ time.Duration) (*fetch.RenderedPage, error) {
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	html, ok := s.pages[url]
	if !ok {
		return &fetch.RenderedPage{URL: url, HTML: "", Status: 404}, nil
	}
	return &fetch.RenderedPage{URL: url, HTML: html, Status: 200}, nil
}

func (s *stubRenderer) Close() error { return nil }

func stubFactory(s *stubRenderer) RendererFactory {
	return func(int, time.Duration) (fetch.Renderer, error) { return s, nil }
}

func page(title, body string) string {
	return "<html><head><title>" + title + "</title></head><body><main><h1>" +
		title + "</h1>" + body + "</main></body></html>"
}

func testConfig(t *testing.T, seed string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SeedURL = seed
	cfg.Delay = 0
	cfg.RespectRobots = false
	cfg.Concurrency = 1
	cfg.OutputDir = t.TempDir()
	return cfg
}

func waitStatus(t *testing.T, m *Manager, id string, want Status) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := m.GetStatus(id)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if snap.Status == want {
			return snap
		}
		if snap.Status == StatusFailed && want != StatusFailed {
			t.Fatalf("task failed: %s", snap.Error)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %s", want)
	return Snapshot{}
}

func chainRenderer() *stubRenderer {
	return &stubRenderer{pages: map[string]string{
		"http://example.com/a": page("Page A", `<p>Alpha content.</p><p><a href="/b">Next B</a></p>`),
		"http://example.com/b": page("Page B", `<p>Beta content.</p><p><a href="/c">Next C</a> <a href="/a">Back to A</a></p>`),
		"http://example.com/c": page("Page C", `<p>Gamma content.</p><p><a href="/d">Next D</a></p>`),
		"http://example.com/d": page("Page D", `<p>Delta content.</p>`),
	}}
}

func TestFullRunWritesResultAndRewritesLinks(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer store.Close()

	m := NewManager(NewRegistry(), store, nil).WithRendererFactory(stubFactory(chainRenderer()))

	cfg := testConfig(t, "http://example.com/a")
	cfg.MaxDepth = 2
	cfg.MaxPages = 3

	id, err := m.CreateTask(cfg, types.ModeFull)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	snap := waitStatus(t, m, id, StatusCompleted)
	if snap.ResultDir == "" {
		t.Fatal("completed full task has no result dir")
	}
	if snap.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", snap.PageCount)
	}

	for _, name := range []string{"index.md", "001_Page_A.md", "002_Page_B.md", "003_Page_C.md"} {
		if _, err := os.Stat(filepath.Join(snap.ResultDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	body, err := os.ReadFile(filepath.Join(snap.ResultDir, "002_Page_B.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "(./003_Page_C.md)") {
		t.Errorf("link to page C not rewritten:\n%s", body)
	}
	if !strings.Contains(string(body), "(./001_Page_A.md)") {
		t.Errorf("backlink to page A not rewritten:\n%s", body)
	}
	// D was never admitted, so its link in C stays absolute.
	body, err = os.ReadFile(filepath.Join(snap.ResultDir, "003_Page_C.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "(http://example.com/d)") {
		t.Errorf("link to unfetched page D should stay absolute:\n%s", body)
	}

	// Run history is written after the status flips to completed.
	deadline := time.Now().Add(5 * time.Second)
	for {
		run, err := store.GetRun(id)
		if err == nil {
			if run.PageCount != 3 || run.Mode != "full" {
				t.Errorf("recorded run mismatch: %+v", run)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never recorded: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPreviewCapsPagesAndSkipsExport(t *testing.T) {
	m := NewManager(NewRegistry(), nil, nil).WithRendererFactory(stubFactory(chainRenderer()))

	cfg := testConfig(t, "http://example.com/a")
	cfg.MaxDepth = 5
	cfg.MaxPages = 50

	id, err := m.CreateTask(cfg, types.ModePreview)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	snap := waitStatus(t, m, id, StatusCompleted)
	if len(snap.Preview) == 0 || len(snap.Preview) > 3 {
		t.Errorf("expected 1-3 preview summaries, got %d", len(snap.Preview))
	}
	if snap.ResultDir != "" {
		t.Errorf("preview task should not write results, got %s", snap.ResultDir)
	}
	if snap.Preview[0].Title != "Page A" {
		t.Errorf("unexpected first summary: %+v", snap.Preview[0])
	}
}

func TestCreateTaskRejectsInvalidSeed(t *testing.T) {
	m := NewManager(NewRegistry(), nil, nil)

	cfg := config.Default()
	cfg.SeedURL = "ftp://example.com/a"
	if _, err := m.CreateTask(cfg, types.ModeFull); !errors.Is(err, config.ErrInvalidSeedURL) {
		t.Errorf("expected ErrInvalidSeedURL, got %v", err)
	}
}

func TestRendererInitFailureFailsTask(t *testing.T) {
	m := NewManager(NewRegistry(), nil, nil).WithRendererFactory(
		func(int, time.Duration) (fetch.Renderer, error) {
			return nil, errors.New("no browser")
		})

	id, err := m.CreateTask(testConfig(t, "http://example.com/a"), types.ModeFull)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	snap := waitStatus(t, m, id, StatusFailed)
	if !strings.Contains(snap.Error, "no browser") {
		t.Errorf("unexpected error: %s", snap.Error)
	}
}

func TestSeedFetchFailureFailsTask(t *testing.T) {
	r := &stubRenderer{errs: map[string]error{
		"http://example.com/a": errors.New("connection refused"),
	}}
	m := NewManager(NewRegistry(), nil, nil).WithRendererFactory(stubFactory(r))

	id, err := m.CreateTask(testConfig(t, "http://example.com/a"), types.ModeFull)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	snap := waitStatus(t, m, id, StatusFailed)
	if !strings.Contains(snap.Error, "no pages retrieved") {
		t.Errorf("unexpected error: %s", snap.Error)
	}
}

func TestWriteArchive(t *testing.T) {
	m := NewManager(NewRegistry(), nil, nil).WithRendererFactory(stubFactory(chainRenderer()))

	cfg := testConfig(t, "http://example.com/a")
	cfg.MaxDepth = 0

	id, err := m.CreateTask(cfg, types.ModeFull)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	waitStatus(t, m, id, StatusCompleted)

	var buf bytes.Buffer
	if err := m.WriteArchive(id, &buf); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("archive is not a zip stream")
	}
}

func TestWriteArchiveRejectsPreview(t *testing.T) {
	m := NewManager(NewRegistry(), nil, nil).WithRendererFactory(stubFactory(chainRenderer()))

	cfg := testConfig(t, "http://example.com/a")
	cfg.MaxDepth = 0

	id, err := m.CreateTask(cfg, types.ModePreview)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	waitStatus(t, m, id, StatusCompleted)

	var buf bytes.Buffer
	if err := m.WriteArchive(id, &buf); !errors.Is(err, ErrNoArchive) {
		t.Errorf("expected ErrNoArchive, got %v", err)
	}
}

func TestGetStatusUnknownTask(t *testing.T) {
	m := NewManager(NewRegistry(), nil, nil)
	if _, err := m.GetStatus("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
