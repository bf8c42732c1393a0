// Package dom builds indexed snapshots of the actionable elements of a page
// and turns caller references (index, selector, coordinates) into targets.
package dom

import (
	"context"
	"math"
	"strings"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
)

// InteractiveSelector matches every element considered actionable.
const InteractiveSelector = `a, button, input, select, textarea, [role="button"], [role="link"], [role="checkbox"], [role="radio"], [tabindex]:not([tabindex^="-"])`

type CaptureConfig struct {
	Selector    string
	MaxElements int
	// TextLimit caps the text captured per element.
	TextLimit int
}

var DefaultCaptureConfig = CaptureConfig{
	Selector:    InteractiveSelector,
	MaxElements: 1000,
	TextLimit:   200,
}

// captureScript enumerates visible matches in document order together with
// their geometry. Indices are assigned on the Go side.
const captureScript = `(selector, maxElements, textLimit) => {
	const out = [];
	for (const el of document.querySelectorAll(selector)) {
		if (out.length >= maxElements) break;
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		if (style.display === 'none' || style.visibility === 'hidden' || style.opacity === '0') continue;
		if (rect.width <= 0 || rect.height <= 0) continue;
		const attributes = {};
		for (const a of el.attributes) attributes[a.name] = a.value;
		const raw = el.innerText || el.value || el.getAttribute('aria-label') || '';
		out.push({
			tag: el.tagName.toLowerCase(),
			attributes,
			text: String(raw).replace(/\s+/g, ' ').trim().slice(0, textLimit),
			page: {x: rect.left + window.scrollX, y: rect.top + window.scrollY, width: rect.width, height: rect.height},
			viewport: {x: rect.left, y: rect.top, width: rect.width, height: rect.height},
		});
	}
	// Offset of this document inside the top-level viewport. Cross-origin
	// parents stop the walk.
	const frameOffset = {x: 0, y: 0};
	try {
		for (let w = window; w.frameElement; w = w.parent) {
			const fe = w.frameElement;
			const r = fe.getBoundingClientRect();
			frameOffset.x += r.left + fe.clientLeft;
			frameOffset.y += r.top + fe.clientTop;
		}
	} catch (e) {}
	const doc = document.documentElement;
	return {
		url: location.href,
		title: document.title,
		viewport: {width: window.innerWidth, height: window.innerHeight},
		scrollY: window.scrollY,
		totalHeight: Math.max(doc ? doc.scrollHeight : 0, document.body ? document.body.scrollHeight : 0),
		frameOffset,
		elements: out,
	};
}`

type rawElement struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes"`
	Text       string            `json:"text"`
	Page       geometry.Rect     `json:"page"`
	Viewport   geometry.Rect     `json:"viewport"`
}

type rawCapture struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Viewport    geometry.Viewport `json:"viewport"`
	ScrollY     float64           `json:"scrollY"`
	TotalHeight float64           `json:"totalHeight"`
	FrameOffset geometry.Point    `json:"frameOffset"`
	Elements    []rawElement      `json:"elements"`
}

type Engine struct {
	cfg        CaptureConfig
	strategies []Strategy
	logger     output.LoggerPort
}

func NewEngine(cfg CaptureConfig, logger output.LoggerPort) *Engine {
	if cfg.Selector == "" {
		cfg.Selector = DefaultCaptureConfig.Selector
	}
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = DefaultCaptureConfig.MaxElements
	}
	if cfg.TextLimit <= 0 {
		cfg.TextLimit = DefaultCaptureConfig.TextLimit
	}
	return &Engine{cfg: cfg, strategies: DefaultStrategies, logger: logger}
}

// WithStrategies replaces the locator strategy list.
func (e *Engine) WithStrategies(strategies ...Strategy) *Engine {
	e.strategies = strategies
	return e
}

// Capture takes a fresh snapshot of ec.
func (e *Engine) Capture(ctx context.Context, ec output.ExecutionContext) (*entity.PageSnapshot, error) {
	var raw rawCapture
	if err := ec.Eval(ctx, captureScript, &raw, e.cfg.Selector, e.cfg.MaxElements, e.cfg.TextLimit); err != nil {
		return nil, entity.Upstream("capture snapshot", err)
	}
	snap := buildSnapshot(raw)
	e.logger.Debug("Snapshot captured", "url", snap.URL, "elements", snap.Count())
	return snap, nil
}

func buildSnapshot(raw rawCapture) *entity.PageSnapshot {
	snap := &entity.PageSnapshot{
		URL:         raw.URL,
		Title:       raw.Title,
		Viewport:    raw.Viewport,
		ElementTree: &entity.ElementNode{TagName: "root", IsVisible: true},
		SelectorMap: make(map[int]*entity.ElementNode, len(raw.Elements)),
	}

	snap.ScrollOffsetAbove = int(math.Max(0, raw.ScrollY))
	below := raw.TotalHeight - (raw.ScrollY + raw.Viewport.Height)
	snap.ScrollOffsetBelow = int(math.Max(0, below))

	index := 0
	for _, r := range raw.Elements {
		if r.Page.Empty() {
			continue
		}
		index++

		// Visibility is judged against the frame's own viewport; the stored
		// viewport rect is in top-level space where input events land.
		page, vp := r.Page, r.Viewport
		inViewport := raw.Viewport.Contains(vp)
		vp.X += raw.FrameOffset.X
		vp.Y += raw.FrameOffset.Y
		node := &entity.ElementNode{
			TagName:             strings.ToLower(r.Tag),
			Attributes:          r.Attributes,
			IsVisible:           true,
			IsInteractive:       true,
			IsInViewport:        inViewport,
			PageCoordinates:     &page,
			ViewportCoordinates: &vp,
			HighlightIndex:      index,
		}
		if node.Attributes == nil {
			node.Attributes = map[string]string{}
		}
		if r.Text != "" {
			node.AppendChild(&entity.TextNode{Text: r.Text})
		}

		snap.ElementTree.AppendChild(node)
		snap.SelectorMap[index] = node
	}
	return snap
}
