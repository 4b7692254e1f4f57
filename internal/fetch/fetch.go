// Package fetch retrieves rendered page bodies with timeout, politeness
// delay and failure classification.
package fetch

import (
	"context"
	"log/slog"
	"time"
)

// Fetcher retrieves rendered pages through a Renderer, applying the
// per-host delay and classifying failures. One fetch attempt per URL;
// the traversal layer treats any failure as terminal for that page.
type Fetcher struct {
	renderer Renderer
	hosts    *hostLimiter
	timeout  time.Duration
	logger   *slog.Logger
}

// NewFetcher wraps a renderer with timeout and inter-request delay.
func NewFetcher(r Renderer, timeout, delay time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		renderer: r,
		hosts:    newHostLimiter(delay),
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch retrieves a single URL. Returns *Error for classified failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*RenderedPage, error) {
	if err := f.hosts.wait(ctx, url); err != nil {
		return nil, classify(url, err)
	}

	start := time.Now()
	page, err := f.renderer.Render(ctx, url, f.timeout)
	if err != nil {
		ferr := classify(url, err)
		f.logger.Warn("fetch failed", "url", url, "kind", ferr.Kind.String(), "err", err)
		return nil, ferr
	}

	if page.Status >= 400 {
		f.logger.Warn("fetch rejected", "url", url, "status", page.Status)
		return nil, &Error{Kind: KindRejected, URL: url, Status: page.Status}
	}

	f.logger.Debug("fetched", "url", url, "status", page.Status, "took", time.Since(start))
	return page, nil
}
