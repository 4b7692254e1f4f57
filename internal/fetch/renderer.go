package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// RenderedPage is the materialized result of loading a URL in a
// render-capable loader.
type RenderedPage struct {
	URL    string
	HTML   string
	Status int
}

// Renderer loads a URL and returns the page after client-side rendering
// has settled.
type Renderer interface {
	Render(ctx context.Context, url string, timeout time.Duration) (*RenderedPage, error)
	Close() error
}

// ChromeRenderer renders pages with headless Chrome. A bounded pool of
// tabs is shared by all tasks using this renderer.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabs        chan struct{}
	renderWait  time.Duration
}

// NewChromeRenderer starts a Chrome allocator with poolSize concurrent
// tabs. renderWait is the settle time after navigation for JS-driven
// content to appear.
func NewChromeRenderer(poolSize int, renderWait time.Duration) (*ChromeRenderer, error) {
	if poolSize < 1 {
		poolSize = 1
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 2000),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeRenderer{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabs:        make(chan struct{}, poolSize),
		renderWait:  renderWait,
	}, nil
}

// Render navigates to the URL, waits for the body and the settle delay,
// scrolls to force lazy-rendered document sections, and returns the
// final HTML. Document platforms only materialize content that has been
// scrolled into view, so the scroll pass is part of readiness, not an
// optimization.
func (r *ChromeRenderer) Render(ctx context.Context, url string, timeout time.Duration) (*RenderedPage, error) {
	select {
	case r.tabs <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-r.tabs }()

	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, timeout)
	defer timeoutCancel()

	// Propagate caller cancellation into the tab context.
	stop := context.AfterFunc(ctx, timeoutCancel)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	status := 0
	if resp != nil {
		status = int(resp.Status)
	}

	var htmlContent string
	err = chromedp.Run(tabCtx,
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.renderWait),
		scrollToBottom(),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	return &RenderedPage{URL: url, HTML: htmlContent, Status: status}, nil
}

// scrollToBottom scrolls in viewport-sized steps until the document
// height stops growing, triggering scroll-based lazy loading.
func scrollToBottom() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		lastHeight := int64(0)
		stable := 0
		for i := 0; i < 30 && stable < 3; i++ {
			var height int64
			if err := chromedp.Run(ctx,
				chromedp.Evaluate(`window.scrollBy(0, window.innerHeight); document.body.scrollHeight`, &height),
			); err != nil {
				return err
			}
			if height == lastHeight {
				stable++
			} else {
				stable = 0
				lastHeight = height
			}
			if err := chromedp.Run(ctx, chromedp.Sleep(200*time.Millisecond)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close shuts down the Chrome allocator.
func (r *ChromeRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
