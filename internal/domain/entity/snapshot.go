package entity

import (
	"fmt"
	"sort"
	"strings"

	"browser-automation/internal/domain/geometry"
)

// ListingAttributes are the attributes rendered in the element listing.
var ListingAttributes = []string{"id", "href", "src", "alt", "aria-label", "placeholder", "name", "role", "title", "value"}

// SummaryAttributes are the attributes kept in the simplified interactive element list.
var SummaryAttributes = []string{"id", "href", "src", "alt", "placeholder", "name", "role", "title", "type", "value"}

// Node is either an *ElementNode or a *TextNode.
type Node interface {
	node()
}

// ElementNode is one DOM element of interest inside a snapshot. Parent is a
// back reference only; the snapshot owns every node.
type ElementNode struct {
	TagName             string            `json:"tag_name"`
	Attributes          map[string]string `json:"attributes"`
	IsVisible           bool              `json:"is_visible"`
	IsInteractive       bool              `json:"is_interactive"`
	IsInViewport        bool              `json:"is_in_viewport"`
	PageCoordinates     *geometry.Rect    `json:"page_coordinates,omitempty"`
	ViewportCoordinates *geometry.Rect    `json:"viewport_coordinates,omitempty"`
	HighlightIndex      int               `json:"highlight_index,omitempty"`
	Parent              *ElementNode      `json:"-"`
	Children            []Node            `json:"-"`
}

// TextNode is a text leaf owned by its parent element.
type TextNode struct {
	Text   string       `json:"text"`
	Parent *ElementNode `json:"-"`
}

func (*ElementNode) node() {}
func (*TextNode) node()    {}

// AppendChild links child under n.
func (n *ElementNode) AppendChild(child Node) {
	switch c := child.(type) {
	case *ElementNode:
		c.Parent = n
	case *TextNode:
		c.Parent = n
	}
	n.Children = append(n.Children, child)
}

// Text joins the direct text children of n.
func (n *ElementNode) Text() string {
	var parts []string
	for _, c := range n.Children {
		if t, ok := c.(*TextNode); ok && strings.TrimSpace(t.Text) != "" {
			parts = append(parts, strings.TrimSpace(t.Text))
		}
	}
	return strings.Join(parts, " ")
}

// Attr returns an attribute value or "".
func (n *ElementNode) Attr(name string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[name]
}

// IsTextEntry reports whether the element accepts typed input.
func (n *ElementNode) IsTextEntry() bool {
	switch strings.ToLower(n.TagName) {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// PageSnapshot is captured fresh after every state change and never mutated
// afterwards. Indices in SelectorMap are only meaningful for this snapshot.
type PageSnapshot struct {
	URL               string
	Title             string
	ScrollOffsetAbove int
	ScrollOffsetBelow int
	Viewport          geometry.Viewport
	ElementTree       *ElementNode
	SelectorMap       map[int]*ElementNode
}

// EmptySnapshot is used when state capture itself fails.
func EmptySnapshot() *PageSnapshot {
	return &PageSnapshot{
		ElementTree: &ElementNode{TagName: "root"},
		SelectorMap: map[int]*ElementNode{},
	}
}

// Element looks up an indexed element.
func (s *PageSnapshot) Element(index int) (*ElementNode, bool) {
	if s == nil {
		return nil, false
	}
	el, ok := s.SelectorMap[index]
	return el, ok
}

// Count is the number of indexed elements.
func (s *PageSnapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.SelectorMap)
}

// Indices returns the selector map keys in ascending order.
func (s *PageSnapshot) Indices() []int {
	if s == nil {
		return nil
	}
	keys := make([]int, 0, len(s.SelectorMap))
	for k := range s.SelectorMap {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// FormatElements renders one line per indexed element:
//
//	[3]<a href='/docs' title='Docs'>Documentation</a>
func (s *PageSnapshot) FormatElements(include []string) string {
	var sb strings.Builder
	for _, idx := range s.Indices() {
		el := s.SelectorMap[idx]
		tag := strings.ToLower(el.TagName)

		fmt.Fprintf(&sb, "[%d]<%s", idx, tag)
		for _, name := range include {
			if v := el.Attr(name); v != "" {
				fmt.Fprintf(&sb, " %s='%s'", name, truncate(v, 100))
			}
		}
		sb.WriteString(">")
		sb.WriteString(truncate(el.Text(), 150))
		fmt.Fprintf(&sb, "</%s>\n", tag)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// InteractiveElement is the simplified element view returned to callers.
type InteractiveElement struct {
	Index        int               `json:"index"`
	TagName      string            `json:"tag_name"`
	IsInViewport bool              `json:"is_in_viewport"`
	Text         string            `json:"text"`
	Attributes   map[string]string `json:"attributes"`
}

// Summarize builds the simplified element list in index order.
func (s *PageSnapshot) Summarize(include []string) []InteractiveElement {
	indices := s.Indices()
	out := make([]InteractiveElement, 0, len(indices))
	for _, idx := range indices {
		el := s.SelectorMap[idx]
		attrs := make(map[string]string)
		for _, name := range include {
			if v := el.Attr(name); v != "" {
				attrs[name] = v
			}
		}
		out = append(out, InteractiveElement{
			Index:        idx,
			TagName:      strings.ToLower(el.TagName),
			IsInViewport: el.IsInViewport,
			Text:         el.Text(),
			Attributes:   attrs,
		})
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
