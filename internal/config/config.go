// Package config defines the crawl configuration and its defaults.
package config

import (
	"net/url"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// Limits enforced by Validate, matching what the UI layer allows.
const (
	MaxDepthLimit = 5
	MaxPagesLimit = 1000
)

// Config holds the immutable settings for one crawl task.
type Config struct {
	// SeedURL is the starting point of the traversal.
	SeedURL string

	// MaxDepth limits recursion. 0 means the seed page only.
	MaxDepth int

	// MaxPages caps the number of URLs ever admitted to the frontier.
	MaxPages int

	// SameDomainOnly restricts traversal to the seed's host. Subdomains
	// of a recognized document platform are still admitted because they
	// serve the same content under different hosts.
	SameDomainOnly bool

	// ExcludePatterns are case-insensitive regular expressions; a URL
	// matching any of them is never admitted.
	ExcludePatterns []string

	// Timeout bounds a single fetch, including render wait.
	Timeout time.Duration

	// Delay is the politeness gap between requests to the same host.
	Delay time.Duration

	// Concurrency is the maximum number of in-flight fetches.
	Concurrency int

	// RenderWait is the settle time after navigation for client-side
	// rendering to materialize.
	RenderWait time.Duration

	// NoRender fetches pages with a plain HTTP GET instead of a
	// headless browser. Client-side rendered content will be missing.
	NoRender bool

	// RespectRobots enables the basic robots.txt opt-out check.
	RespectRobots bool

	// OutputFormat selects the page file format in full mode.
	OutputFormat types.OutputFormat

	// OutputDir is the root under which result directories are created.
	OutputDir string
}

// DefaultExcludePatterns skip binary assets and auth flows.
var DefaultExcludePatterns = []string{
	`.*\.(jpg|jpeg|png|gif|bmp|svg|ico)$`,
	`.*\.(css|js|woff|woff2|ttf|eot)$`,
	`.*\.(pdf|doc|docx|xls|xlsx|ppt|pptx)$`,
	`.*\.(zip|rar|7z|tar|gz)$`,
	`.*\.(mp3|mp4|avi|mkv|mov|wmv)$`,
	`.*/login.*`,
	`.*/logout.*`,
	`.*/register.*`,
}

// Default returns a configuration with documented defaults.
func Default() Config {
	return Config{
		MaxDepth:        1,
		MaxPages:        50,
		SameDomainOnly:  true,
		ExcludePatterns: DefaultExcludePatterns,
		Timeout:         30 * time.Second,
		Delay:           1 * time.Second,
		Concurrency:     2,
		RenderWait:      2 * time.Second,
		RespectRobots:   true,
		OutputFormat:    types.FormatMarkdown,
		OutputDir:       "./output",
	}
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	u, err := url.Parse(c.SeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidSeedURL
	}

	if c.MaxDepth < 0 || c.MaxDepth > MaxDepthLimit {
		return ErrInvalidDepth
	}
	if c.MaxPages < 1 || c.MaxPages > MaxPagesLimit {
		return ErrInvalidPageLimit
	}

	if c.Concurrency <= 0 {
		c.Concurrency = Default().Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = Default().Timeout
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.RenderWait < 0 {
		c.RenderWait = 0
	}
	if c.OutputFormat == "" {
		c.OutputFormat = types.FormatMarkdown
	}
	if !c.OutputFormat.Valid() {
		return ErrInvalidFormat
	}
	if c.OutputDir == "" {
		c.OutputDir = Default().OutputDir
	}
	return nil
}
