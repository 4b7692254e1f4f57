package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetAppliesBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(5 * time.Second)
	body, status, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if string(body) != "ok" {
		t.Errorf("unexpected body %q", body)
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("expected browser user agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("expected html accept header, got %q", gotAccept)
	}
}

func TestGetReturnsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(5 * time.Second)
	_, status, err := c.Get(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestProfileConsistentPerClient(t *testing.T) {
	c := New(time.Second)
	if c.Profile().UserAgent == "" {
		t.Error("profile has empty user agent")
	}
	if c.Profile().Name != c.Profile().Name {
		t.Error("profile changed between calls")
	}
}
