// Package rewrite turns external hyperlinks between retrieved pages
// into relative references to the generated files.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sunnyzhifei/web-reader-ai/internal/identity"
	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

const maxSlugLen = 100

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Slug converts a title to a filesystem-safe name fragment.
func Slug(title string) string {
	s := unsafeChars.ReplaceAllString(title, "")
	s = strings.Join(strings.Fields(s), "_")
	if runes := []rune(s); len(runes) > maxSlugLen {
		s = string(runes[:maxSlugLen])
	}
	s = strings.Trim(s, ". ")
	if s == "" {
		return "untitled"
	}
	return s
}

// AssignFilenames gives every page its stable output filename:
// zero-padded discovery index, underscore, sanitized title, extension.
func AssignFilenames(pages []*types.PageRecord, format types.OutputFormat) {
	for i, p := range pages {
		p.Filename = fmt.Sprintf("%03d_%s%s", i+1, Slug(p.Title), format.Ext())
	}
}

// Rewrite replaces, in every page's Markdown body, each hyperlink whose
// canonical identity matches a retrieved page with a relative reference
// to that page's assigned filename. Unmatched hrefs stay untouched.
// Idempotent: relative local references resolve to no identity in the
// page set, so a second pass changes nothing.
func Rewrite(pages []*types.PageRecord, resolver *identity.Resolver) {
	byIdentity := make(map[identity.Identity]*types.PageRecord, len(pages))
	for _, p := range pages {
		byIdentity[identity.Identity(p.Identity)] = p
	}

	for _, p := range pages {
		if p.Markdown == "" {
			continue
		}
		replacements := make(map[string]string)
		for _, link := range p.Links {
			if link.Absolute == "" {
				continue
			}
			target, ok := byIdentity[resolver.Resolve(link.Absolute)]
			if !ok || target.Filename == "" {
				continue
			}
			replacements["("+link.Absolute+")"] = "(./" + target.Filename + ")"
		}
		if len(replacements) == 0 {
			continue
		}
		body := p.Markdown
		for from, to := range replacements {
			body = strings.ReplaceAll(body, from, to)
		}
		p.Markdown = body
	}
}
