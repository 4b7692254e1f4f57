// Package extract isolates the main content of a rendered page and
// converts it to Markdown.
package extract

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// PreviewLength bounds the plain-text preview, in runes.
const PreviewLength = 300

// Content holds the fields the extractor contributes to a PageRecord.
type Content struct {
	Title    string
	Markdown string
	Preview  string
	Links    []types.Link
}

// platformSelectors locate the document body on Feishu/Lark style
// platforms, where the semantic containers are class-based.
var platformSelectors = []string{
	".doc-content",
	".document-content",
	".suite-wiki-content",
	".render-unit-wrapper",
	".isv-doc-body",
	".catalogue-content",
}

// commonSelectors are the generic main-content containers, tried after
// the platform ones.
var commonSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	".content",
	".main-content",
	"#content",
	"#main",
}

// noisePhrases mark platform UI chrome that leaks into the document
// container; any block containing one is dropped.
var noisePhrases = []string{
	"附件不支持打印",
	"文档链接直达",
	"评论区",
	"更多分类内容",
	"前往语雀",
	"扫码登录",
	"转到元文档",
}

// boilerplateSelector removes navigation, ads and script regions before
// content ranking.
const boilerplateSelector = "script, style, nav, header, footer, aside, iframe, noscript"

// Extract pulls the main content out of rendered HTML. It never fails
// on missing content: a page without a recognizable body yields an
// empty-body Content.
func Extract(htmlStr, pageURL string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(boilerplateSelector).Remove()

	container := findContainer(doc)

	base, _ := url.Parse(pageURL)
	if title == "" {
		title = titleFromURL(base)
	}

	c := &converter{base: base}
	var markdown string
	var preview string
	if container != nil && len(container.Nodes) > 0 {
		for _, n := range container.Nodes {
			c.walkBlocks(n)
		}
		c.flushParagraph()
		markdown = strings.Join(c.blocks, "\n\n")
		preview = previewText(container.Text())
	}

	return &Content{
		Title:    title,
		Markdown: markdown,
		Preview:  preview,
		Links:    c.links,
	}, nil
}

// findContainer ranks candidate content containers: platform document
// selectors first, then semantic ones, then body.
func findContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range platformSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	for _, sel := range commonSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	if s := doc.Find("body").First(); s.Length() > 0 {
		return s
	}
	return doc.Selection
}

func titleFromURL(u *url.URL) string {
	if u == nil {
		return "Untitled"
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segs[len(segs)-1]; last != "" {
		return last
	}
	return "Untitled"
}

// previewText collapses whitespace and truncates to PreviewLength runes.
func previewText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	joined := strings.Join(fields, " ")
	runes := []rune(joined)
	if len(runes) <= PreviewLength {
		return joined
	}
	return string(runes[:PreviewLength]) + "..."
}
