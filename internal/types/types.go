package types

import (
	"time"
)

// OutputFormat selects the on-disk format for retrieved pages.
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
	FormatText     OutputFormat = "txt"
)

// Ext returns the file extension for the format, including the dot.
func (f OutputFormat) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatText:
		return ".txt"
	default:
		return ".md"
	}
}

// Valid reports whether f is a recognized output format.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatMarkdown, FormatJSON, FormatText:
		return true
	}
	return false
}

// Mode selects how a crawl run materializes its result.
type Mode string

const (
	// ModePreview runs a short crawl and keeps page summaries in memory.
	ModePreview Mode = "preview"
	// ModeFull runs a complete crawl, rewrites internal links and writes
	// the result directory.
	ModeFull Mode = "full"
)

// Link is a hyperlink found inside a page's retained content.
type Link struct {
	Raw      string `json:"raw"`
	Absolute string `json:"absolute"`
}

// PageRecord is one retrieved document. Created by the extractor and
// read-only afterwards, except that the link rewriter assigns Filename
// and replaces Markdown with the rewritten body.
type PageRecord struct {
	URL       string    `json:"url"`
	Identity  string    `json:"identity"`
	Depth     int       `json:"depth"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	Preview   string    `json:"preview"`
	Links     []Link    `json:"links,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PageError records a page that was visited but produced no record.
type PageError struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
	Error string `json:"error"`
}

// CrawlResult is the outcome of one traversal run. Pages are in
// discovery order.
type CrawlResult struct {
	Pages  []*PageRecord `json:"pages"`
	Failed []PageError   `json:"failed,omitempty"`
}

// PageSummary is the preview-mode view of a page.
type PageSummary struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Preview string `json:"text_preview"`
}

// Summaries converts the result's pages into preview summaries.
func (r *CrawlResult) Summaries() []PageSummary {
	out := make([]PageSummary, 0, len(r.Pages))
	for _, p := range r.Pages {
		out = append(out, PageSummary{Title: p.Title, URL: p.URL, Preview: p.Preview})
	}
	return out
}
