// Package htmltext reduces page markup to the readable text returned by
// content extraction.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxOutputSize int
}

var DefaultConfig = Config{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe", "template",
		"link", "meta", "head", "title",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	MaxOutputSize: 100_000,
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

// Extractor implements the text extraction used by extract_content.
type Extractor struct {
	cfg Config
}

func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Clean returns the body markup without scripts, styles, comments and noisy
// attributes. Unparseable input is returned unchanged.
func (e *Extractor) Clean(rawHTML string) string {
	body, ok := e.body(rawHTML)
	if !ok {
		return rawHTML
	}
	var sb strings.Builder
	_ = html.Render(&sb, body)
	return truncate(sb.String(), e.cfg.MaxOutputSize)
}

// Text returns the visible text of the body, one block per line.
func (e *Extractor) Text(rawHTML string) string {
	body, ok := e.body(rawHTML)
	if !ok {
		return ""
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
			return
		case html.ElementNode:
			if blockTags[n.Data] {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)
	flush()

	return truncate(strings.Join(lines, "\n"), e.cfg.MaxOutputSize)
}

func (e *Extractor) body(rawHTML string) (*html.Node, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, false
	}
	body := findBody(doc)
	if body == nil {
		return nil, false
	}
	e.clean(body)
	return body, true
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func (e *Extractor) clean(n *html.Node) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}
	if isOneOf(n.Data, e.cfg.TagsToRemove...) || hidden(n) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	n.Attr = e.filterAttributes(n.Attr)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		e.clean(c)
		c = next
	}
}

// hidden catches elements the page hides with markup alone.
func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "style":
			s := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(s, "display:none") || strings.Contains(s, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) filterAttributes(attrs []html.Attribute) []html.Attribute {
	var kept []html.Attribute
	for _, attr := range attrs {
		if isOneOf(attr.Key, e.cfg.AttrsToRemove...) {
			continue
		}
		if strings.HasPrefix(attr.Key, "data-") || strings.HasPrefix(attr.Key, "on") {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize] + "\n... (truncated)"
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
