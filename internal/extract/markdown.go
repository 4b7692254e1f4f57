package extract

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

// converter walks the retained subtree and accumulates Markdown blocks
// plus every hyperlink encountered, in document order.
type converter struct {
	base    *url.URL
	blocks  []string
	links   []types.Link
	pending strings.Builder
}

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "pre": true, "blockquote": true, "table": true,
	"div": true, "section": true, "article": true, "main": true, "hr": true,
	"figure": true, "details": true,
}

func (c *converter) walkBlocks(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			c.pending.WriteString(child.Data)
		case html.ElementNode:
			c.element(child)
		}
		// Comment nodes are dropped.
	}
}

func (c *converter) element(n *html.Node) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		c.flushParagraph()
		level := int(n.Data[1] - '0')
		c.heading(level, n)

	case "p":
		c.flushParagraph()
		c.paragraph(n)

	case "ul", "ol":
		c.flushParagraph()
		if md := c.list(n, n.Data == "ol", 0); md != "" {
			c.addBlock(md)
		}

	case "pre":
		c.flushParagraph()
		code := strings.TrimRight(rawText(n), "\n")
		if strings.TrimSpace(code) != "" {
			c.addBlock("```\n" + code + "\n```")
		}

	case "blockquote":
		c.flushParagraph()
		inner := &converter{base: c.base}
		inner.walkBlocks(n)
		inner.flushParagraph()
		c.links = append(c.links, inner.links...)
		if len(inner.blocks) > 0 {
			quoted := make([]string, 0, len(inner.blocks))
			for _, b := range inner.blocks {
				for _, line := range strings.Split(b, "\n") {
					quoted = append(quoted, "> "+line)
				}
			}
			c.addBlock(strings.Join(quoted, "\n"))
		}

	case "table":
		c.flushParagraph()
		if md := c.table(n); md != "" {
			c.addBlock(md)
		}

	case "hr":
		c.flushParagraph()
		c.addBlock("---")

	case "br":
		c.pending.WriteString("\n")

	case "div", "section", "article", "main", "figure", "details", "body":
		if level := pseudoHeadingLevel(n); level > 0 && !hasBlockChildren(n) {
			c.flushParagraph()
			c.heading(level, n)
			return
		}
		if hasBlockChildren(n) {
			c.flushParagraph()
			c.walkBlocks(n)
			c.flushParagraph()
			return
		}
		// Leaf container: platform editors emit one div per line.
		c.flushParagraph()
		c.paragraph(n)

	default:
		// Inline element at block level joins the pending paragraph.
		c.inline(n, &c.pending, false)
	}
}

func (c *converter) heading(level int, n *html.Node) {
	var sb strings.Builder
	c.inlineChildren(n, &sb, false)
	text := collapseSpace(sb.String())
	if text == "" {
		return
	}
	c.addBlock(strings.Repeat("#", level) + " " + text)
}

func (c *converter) paragraph(n *html.Node) {
	var sb strings.Builder
	c.inlineChildren(n, &sb, false)
	if text := collapseSpace(sb.String()); text != "" {
		c.addBlock(text)
	}
}

// flushParagraph turns accumulated stray inline content into a block.
func (c *converter) flushParagraph() {
	text := collapseSpace(c.pending.String())
	c.pending.Reset()
	if text != "" {
		c.addBlock(text)
	}
}

func (c *converter) addBlock(block string) {
	if containsNoise(block) {
		return
	}
	// Platform editors duplicate rendered lines; drop exact repeats.
	if len(c.blocks) > 0 && c.blocks[len(c.blocks)-1] == block {
		return
	}
	c.blocks = append(c.blocks, block)
}

func (c *converter) list(n *html.Node, ordered bool, depth int) string {
	var lines []string
	index := 1
	indent := strings.Repeat("  ", depth)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "li" {
			continue
		}
		var sb strings.Builder
		var nested []string
		for g := child.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && (g.Data == "ul" || g.Data == "ol") {
				if md := c.list(g, g.Data == "ol", depth+1); md != "" {
					nested = append(nested, md)
				}
				continue
			}
			c.inlineNode(g, &sb, false)
		}
		text := collapseSpace(sb.String())
		if text == "" && len(nested) == 0 {
			continue
		}
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		if text != "" {
			lines = append(lines, indent+marker+text)
		}
		lines = append(lines, nested...)
	}
	return strings.Join(lines, "\n")
}

func (c *converter) table(n *html.Node) string {
	var rows [][]string
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.Data {
			case "tr":
				var cells []string
				for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						var sb strings.Builder
						c.inlineChildren(cell, &sb, false)
						cells = append(cells, collapseSpace(sb.String()))
					}
				}
				if len(cells) > 0 {
					rows = append(rows, cells)
				}
			case "thead", "tbody", "tfoot":
				collect(child)
			}
		}
	}
	collect(n)

	if len(rows) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, "| "+strings.Join(rows[0], " | ")+" |")
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
	for _, row := range rows[1:] {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// inlineChildren renders the inline content of n into sb.
func (c *converter) inlineChildren(n *html.Node, sb *strings.Builder, insideLink bool) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.inlineNode(child, sb, insideLink)
	}
}

func (c *converter) inlineNode(n *html.Node, sb *strings.Builder, insideLink bool) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		c.inline(n, sb, insideLink)
	}
}

func (c *converter) inline(n *html.Node, sb *strings.Builder, insideLink bool) {
	switch n.Data {
	case "b", "strong":
		c.wrap(n, sb, "**", insideLink)
	case "i", "em":
		c.wrap(n, sb, "*", insideLink)
	case "code":
		if text := collapseSpace(rawText(n)); text != "" {
			sb.WriteString("`" + text + "`")
		}
	case "a":
		c.anchor(n, sb, insideLink)
	case "img":
		if alt := attr(n, "alt"); alt != "" {
			sb.WriteString(alt)
		}
	case "br":
		sb.WriteString(" ")
	case "script", "style", "noscript", "iframe":
		// dropped
	default:
		c.inlineChildren(n, sb, insideLink)
	}
}

func (c *converter) wrap(n *html.Node, sb *strings.Builder, marker string, insideLink bool) {
	var inner strings.Builder
	c.inlineChildren(n, &inner, insideLink)
	text := collapseSpace(inner.String())
	if text == "" {
		return
	}
	sb.WriteString(marker + text + marker)
}

// anchor renders a hyperlink and records it. Nested anchors are
// collapsed: an anchor inside another anchor contributes only its text,
// so double-wrapped links become a single flat link.
func (c *converter) anchor(n *html.Node, sb *strings.Builder, insideLink bool) {
	var inner strings.Builder
	c.inlineChildren(n, &inner, true)
	text := collapseSpace(inner.String())

	if insideLink {
		sb.WriteString(text)
		return
	}

	href := attr(n, "href")
	abs := c.resolve(href)
	if abs == "" {
		sb.WriteString(text)
		return
	}

	// The HTML parser splits a double-wrapped anchor into an empty
	// sibling followed by the real one; dropping empty anchors leaves a
	// single flat link.
	if text == "" {
		return
	}

	c.links = append(c.links, types.Link{Raw: href, Absolute: abs})
	sb.WriteString("[" + text + "](" + abs + ")")
}

// resolve turns an href into an absolute http(s) URL, or "" if the href
// is not followable.
func (c *converter) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if c.base != nil {
		u = c.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func containsNoise(block string) bool {
	for _, phrase := range noisePhrases {
		if strings.Contains(block, phrase) {
			return true
		}
	}
	return false
}

// pseudoHeadingLevel maps platform heading classes (heading-hN,
// ace-line-heading-N) to markdown heading levels.
func pseudoHeadingLevel(n *html.Node) int {
	classes := strings.ToLower(attr(n, "class"))
	if classes == "" {
		return 0
	}
	for level := 1; level <= 4; level++ {
		if strings.Contains(classes, fmt.Sprintf("heading-h%d", level)) ||
			strings.Contains(classes, fmt.Sprintf("ace-line-heading-%d", level)) {
			return level
		}
	}
	if strings.Contains(classes, "title") && len([]rune(rawText(n))) < 50 {
		return 2
	}
	return 0
}

func hasBlockChildren(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && blockTags[child.Data] {
			return true
		}
	}
	return false
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
