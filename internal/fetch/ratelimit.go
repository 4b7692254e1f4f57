package fetch

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter enforces the inter-request delay per host. This is a
// politeness control, not a hard rate limiter: the first request to a
// host proceeds immediately, later ones wait out the delay.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

func newHostLimiter(delay time.Duration) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// wait blocks until a request to the URL's host is allowed.
func (h *hostLimiter) wait(ctx context.Context, rawURL string) error {
	if h.delay <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return h.limiter(u.Host).Wait(ctx)
}

func (h *hostLimiter) limiter(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(h.delay), 1)
	h.limiters[host] = l
	return l
}
