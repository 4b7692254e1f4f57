package fetch

import (
	"context"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/httpclient"
)

// PlainRenderer retrieves pages with a plain HTTP GET, skipping the
// browser entirely. Client-side rendered content will be missing; use
// it for static sites or when no Chrome is available.
type PlainRenderer struct {
	client *httpclient.Client
}

func NewPlainRenderer(client *httpclient.Client) *PlainRenderer {
	return &PlainRenderer{client: client}
}

func (r *PlainRenderer) Render(ctx context.Context, url string, timeout time.Duration) (*RenderedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, status, err := r.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return &RenderedPage{URL: url, HTML: string(body), Status: status}, nil
}

func (r *PlainRenderer) Close() error { return nil }
