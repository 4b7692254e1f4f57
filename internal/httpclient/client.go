package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// Client is a plain HTTP client with a browser-like profile applied to
// every request. Safe for concurrent use.
type Client struct {
	http    *http.Client
	profile Profile
	rnd     *rand.Rand
}

// New creates a client with the given timeout. A profile is chosen at
// construction so a single crawl keeps a consistent fingerprint.
func New(timeout time.Duration) *Client {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	profile := pickProfile(rnd)

	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	// The profile's ClientHello records which browser we imitate at the
	// header layer. Wiring it through a full utls dialer needs a custom
	// RoundTripper; the standard TLS stack is used for the connection.

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		profile: profile,
		rnd:     rnd,
	}
}

// Profile returns the browser profile used by this client.
func (c *Client) Profile() Profile {
	return c.profile
}

// Get fetches a URL and returns its body for 2xx responses.
func (c *Client) Get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	c.profile.apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading body: %w", err)
	}
	return body, resp.StatusCode, nil
}
