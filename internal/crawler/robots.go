package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/sunnyzhifei/web-reader-ai/internal/httpclient"
)

// robotsAgent is the token matched against robots.txt user-agent rules.
const robotsAgent = "WebReader"

// robotsCache implements the basic robots.txt opt-out: one fetch per
// host, missing or unreadable files allow everything.
type robotsCache struct {
	client *httpclient.Client
	mu     sync.Mutex
	data   map[string]*robotstxt.RobotsData
}

func newRobotsCache(client *httpclient.Client) *robotsCache {
	return &robotsCache{
		client: client,
		data:   make(map[string]*robotstxt.RobotsData),
	}
}

// allowed reports whether the URL may be fetched.
func (r *robotsCache) allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	robots := r.robotsFor(ctx, u.Scheme, u.Host)
	if robots == nil {
		return true
	}
	return robots.TestAgent(u.Path, robotsAgent)
}

func (r *robotsCache) robotsFor(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	key := scheme + "://" + host

	r.mu.Lock()
	if data, ok := r.data[key]; ok {
		r.mu.Unlock()
		return data
	}
	r.mu.Unlock()

	var data *robotstxt.RobotsData
	body, status, err := r.client.Get(ctx, fmt.Sprintf("%s/robots.txt", key))
	if err == nil && status == http.StatusOK {
		if parsed, perr := robotstxt.FromBytes(body); perr == nil {
			data = parsed
		}
	}

	r.mu.Lock()
	r.data[key] = data
	r.mu.Unlock()
	return data
}
