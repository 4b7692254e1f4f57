package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/httpclient"
)

func TestPlainRendererFetchesStaticHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><main><p>static content</p></main></body></html>"))
	}))
	defer srv.Close()

	r := NewPlainRenderer(httpclient.New(5 * time.Second))
	defer r.Close()

	page, err := r.Render(context.Background(), srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", page.Status)
	}
	if !strings.Contains(page.HTML, "static content") {
		t.Errorf("body not retrieved: %q", page.HTML)
	}
}

func TestPlainRendererReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := NewPlainRenderer(httpclient.New(5 * time.Second))
	defer r.Close()

	page, err := r.Render(context.Background(), srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", page.Status)
	}
}
