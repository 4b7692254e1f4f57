// Package identity resolves URLs to canonical document identities.
//
// Document platforms expose the same logical document under several URLs:
// different subdomains, share-link wrappers, tracking query strings. A
// stable identity is needed both for frontier deduplication and for the
// link rewriting pass, and both must agree, so they share one Resolver.
package identity

import (
	"net/url"
	"regexp"
	"strings"
)

// Identity is the dedup key for a document: either a platform document
// token or a normalized URL. Equality is string equality.
type Identity string

// TokenPattern extracts a platform document identifier from a URL path.
// The pattern must contain exactly one capture group; the captured value
// becomes the identity.
type TokenPattern struct {
	Name string
	re   *regexp.Regexp
}

// defaultPatterns match the document-share path shapes of Feishu/Lark
// style platforms: a marker segment followed by a token of 15+
// alphanumeric characters.
var defaultPatterns = []TokenPattern{
	{Name: "docx", re: regexp.MustCompile(`/docx/([A-Za-z0-9]{15,})`)},
	{Name: "docs", re: regexp.MustCompile(`/docs/([A-Za-z0-9]{15,})`)},
	{Name: "wiki", re: regexp.MustCompile(`/wiki/([A-Za-z0-9]{15,})`)},
	{Name: "sheets", re: regexp.MustCompile(`/sheets/([A-Za-z0-9]{15,})`)},
	{Name: "share", re: regexp.MustCompile(`/share/base/([A-Za-z0-9]{15,})`)},
	{Name: "shortlink", re: regexp.MustCompile(`^/s/([A-Za-z0-9]{15,})$`)},
}

// Resolver turns raw URLs into canonical identities. The zero value is
// not usable; construct with NewResolver.
type Resolver struct {
	patterns []TokenPattern
}

// NewResolver returns a resolver with the built-in platform patterns.
func NewResolver() *Resolver {
	return &Resolver{patterns: defaultPatterns}
}

// NewResolverWithPatterns builds a resolver from custom pattern strings.
// Each pattern must compile and is matched against the URL path.
func NewResolverWithPatterns(patterns map[string]string) (*Resolver, error) {
	r := &Resolver{}
	for name, expr := range patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		r.patterns = append(r.patterns, TokenPattern{Name: name, re: re})
	}
	return r, nil
}

// Resolve maps a URL to its canonical identity. Token patterns are tried
// against the path first; the first match wins. Otherwise the normalized
// URL is the identity. Resolve is deterministic and never fails: an
// unparseable URL resolves to itself.
func (r *Resolver) Resolve(rawURL string) Identity {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Identity(rawURL)
	}

	for _, p := range r.patterns {
		if m := p.re.FindStringSubmatch(u.Path); m != nil {
			return Identity(m[1])
		}
	}

	return Identity(normalize(u))
}

// IsPlatformURL reports whether the URL path matches any token pattern,
// meaning the host is a recognized document platform serving shared
// content across subdomains.
func (r *Resolver) IsPlatformURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, p := range r.patterns {
		if p.re.MatchString(u.Path) {
			return true
		}
	}
	return false
}

// normalize produces the fallback identity: scheme and lowercase host
// with default port stripped, path without trailing slash, no query, no
// fragment.
func normalize(u *url.URL) string {
	host := strings.ToLower(u.Host)
	switch u.Scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}

	path := strings.TrimSuffix(u.Path, "/")

	return u.Scheme + "://" + host + path
}
