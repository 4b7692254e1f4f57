// Package crawler drives the breadth-first traversal of a document
// graph: frontier admission, policy checks, bounded-concurrency
// fetching and per-page extraction.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sunnyzhifei/web-reader-ai/internal/config"
	"github.com/sunnyzhifei/web-reader-ai/internal/extract"
	"github.com/sunnyzhifei/web-reader-ai/internal/fetch"
	"github.com/sunnyzhifei/web-reader-ai/internal/httpclient"
	"github.com/sunnyzhifei/web-reader-ai/internal/identity"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// Fetcher retrieves one rendered page. Satisfied by *fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.RenderedPage, error)
}

// Progress is the pull-based view of a running traversal. Fetched
// counts resolved visits (successful or failed); Total is the page
// budget; URL is the last visit started.
type Progress struct {
	Fetched int    `json:"current"`
	Total   int    `json:"total"`
	URL     string `json:"url,omitempty"`
}

// Crawler runs one task's traversal. Not reusable across runs.
type Crawler struct {
	cfg          config.Config
	fetcher      Fetcher
	resolver     *identity.Resolver
	frontier     *frontier
	robots       *robotsCache
	excludes     []*regexp.Regexp
	seedHost     string
	seedPlatform bool
	logger       *slog.Logger

	mu       sync.Mutex
	progress Progress
}

// New builds a traversal controller. The httpclient is used only for
// robots.txt and may be nil when RespectRobots is off.
func New(cfg config.Config, fetcher Fetcher, resolver *identity.Resolver, client *httpclient.Client, logger *slog.Logger) (*Crawler, error) {
	seed, err := url.Parse(cfg.SeedURL)
	if err != nil || seed.Host == "" {
		return nil, fmt.Errorf("invalid seed URL %q: %w", cfg.SeedURL, config.ErrInvalidSeedURL)
	}

	excludes := make([]*regexp.Regexp, 0, len(cfg.ExcludePatterns))
	for _, p := range cfg.ExcludePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		excludes = append(excludes, re)
	}

	if logger == nil {
		logger = slog.Default()
	}

	c := &Crawler{
		cfg:          cfg,
		fetcher:      fetcher,
		resolver:     resolver,
		frontier:     newFrontier(cfg.MaxPages),
		excludes:     excludes,
		seedHost:     strings.ToLower(seed.Host),
		seedPlatform: resolver.IsPlatformURL(cfg.SeedURL),
		logger:       logger,
		progress:     Progress{Total: cfg.MaxPages},
	}
	if cfg.RespectRobots && client != nil {
		c.robots = newRobotsCache(client)
	}
	return c, nil
}

// Progress returns the latest progress snapshot. Never blocks on the
// traversal itself.
func (c *Crawler) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// outcome is the resolution of one frontier entry.
type outcome struct {
	e    entry
	rec  *types.PageRecord
	perr *types.PageError
}

// Run executes the traversal to completion. Page-level failures are
// collected, never returned as errors; Run fails only when the seed
// cannot be admitted at all.
func (c *Crawler) Run(ctx context.Context) (*types.CrawlResult, error) {
	seedID := c.resolver.Resolve(c.cfg.SeedURL)
	seedIdx, ok := c.frontier.admit(seedID)
	if !ok {
		return nil, fmt.Errorf("seed URL not admissible: %s", c.cfg.SeedURL)
	}

	result := &types.CrawlResult{}
	level := []entry{{url: c.cfg.SeedURL, depth: 0, index: seedIdx}}

	// Strict level order: every depth-d entry resolves before any
	// depth-d+1 entry is admitted.
	for len(level) > 0 {
		outcomes := make([]outcome, len(level))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.cfg.Concurrency)
		for i, e := range level {
			g.Go(func() error {
				outcomes[i] = c.visit(gctx, e)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next []entry
		for _, o := range outcomes {
			if o.perr != nil {
				result.Failed = append(result.Failed, *o.perr)
				continue
			}
			result.Pages = append(result.Pages, o.rec)

			if o.e.depth+1 > c.cfg.MaxDepth {
				continue
			}
			for _, link := range o.rec.Links {
				if e, ok := c.tryAdmit(link.Absolute, o.e.depth+1); ok {
					next = append(next, e)
				}
			}
		}
		level = next
	}

	c.logger.Info("traversal finished",
		"pages", len(result.Pages),
		"failed", len(result.Failed),
		"admitted", c.frontier.admittedCount())
	return result, nil
}

// visit resolves a single frontier entry: robots check, fetch, extract.
func (c *Crawler) visit(ctx context.Context, e entry) outcome {
	c.mu.Lock()
	c.progress.URL = e.url
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.progress.Fetched++
		c.mu.Unlock()
	}()

	if c.robots != nil && !c.robots.allowed(ctx, e.url) {
		c.logger.Debug("blocked by robots.txt", "url", e.url)
		return outcome{e: e, perr: &types.PageError{URL: e.url, Depth: e.depth, Error: "blocked by robots.txt"}}
	}

	page, err := c.fetcher.Fetch(ctx, e.url)
	if err != nil {
		return outcome{e: e, perr: &types.PageError{URL: e.url, Depth: e.depth, Error: err.Error()}}
	}

	content, err := extract.Extract(page.HTML, e.url)
	if err != nil {
		// Degrade to an empty-body record rather than failing the page.
		content = &extract.Content{Title: "Untitled"}
	}

	return outcome{e: e, rec: &types.PageRecord{
		URL:       e.url,
		Identity:  string(c.resolver.Resolve(e.url)),
		Depth:     e.depth,
		Title:     content.Title,
		Markdown:  content.Markdown,
		Preview:   content.Preview,
		Links:     content.Links,
		FetchedAt: time.Now(),
	}}
}

// tryAdmit applies the admission policy to a discovered link.
func (c *Crawler) tryAdmit(absURL string, depth int) (entry, bool) {
	if absURL == "" || depth > c.cfg.MaxDepth {
		return entry{}, false
	}

	u, err := url.Parse(absURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return entry{}, false
	}

	if c.cfg.SameDomainOnly && !c.sameOrigin(u, absURL) {
		return entry{}, false
	}

	lower := strings.ToLower(absURL)
	for _, re := range c.excludes {
		if re.MatchString(lower) {
			return entry{}, false
		}
	}

	index, ok := c.frontier.admit(c.resolver.Resolve(absURL))
	if !ok {
		return entry{}, false
	}
	return entry{url: absURL, depth: depth, index: index}, true
}

// sameOrigin checks host equality with the seed, relaxed for recognized
// platform documents: when the seed itself is a platform document, any
// subdomain serving a tokenized document counts as same-origin because
// it is the same content store.
func (c *Crawler) sameOrigin(u *url.URL, absURL string) bool {
	if strings.EqualFold(u.Host, c.seedHost) {
		return true
	}
	return c.seedPlatform && c.resolver.IsPlatformURL(absURL)
}
