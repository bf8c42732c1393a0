package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var (
	_ output.PagePort  = (*Page)(nil)
	_ output.FramePort = (*Frame)(nil)
)

// execContext runs queries and scripts in one document. Frames are rod pages
// bound to the iframe's execution context.
type execContext struct {
	target *rod.Page
}

func (c execContext) Eval(ctx context.Context, js string, result any, args ...any) error {
	res, err := c.target.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}
	if result == nil || res == nil {
		return nil
	}
	if err := res.Value.Unmarshal(result); err != nil {
		return fmt.Errorf("decoding eval result: %w", err)
	}
	return nil
}

// Query does not wait for the element to appear.
func (c execContext) Query(ctx context.Context, selector string) (output.ElementPort, error) {
	has, el, err := c.target.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return nil, fmt.Errorf("selector %q: %w", selector, entity.ErrElementNotFound)
	}
	return &Element{el: el}, nil
}

func (c execContext) HTML(ctx context.Context) (string, error) {
	html, err := c.target.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read html: %w", err)
	}
	return html, nil
}

type Page struct {
	execContext
	page *rod.Page
	cfg  BrowserConfig
}

func newPage(pg *rod.Page, cfg BrowserConfig) *Page {
	return &Page{execContext: execContext{target: pg}, page: pg, cfg: cfg}
}

func (p *Page) Info(ctx context.Context) (*entity.PageInfo, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read page info: %w", err)
	}
	return &entity.PageInfo{URL: info.URL, Title: info.Title}, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	wait := pg.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigation to %s: %w", url, err)
	}
	return nil
}

func (p *Page) WaitIdle(ctx context.Context, timeout time.Duration) error {
	return p.page.Context(ctx).WaitIdle(timeout)
}

func (p *Page) Back(ctx context.Context) error {
	return p.page.Context(ctx).NavigateBack()
}

func (p *Page) Forward(ctx context.Context) error {
	return p.page.Context(ctx).NavigateForward()
}

func (p *Page) Reload(ctx context.Context) error {
	return p.page.Context(ctx).Reload()
}

func (p *Page) Activate(ctx context.Context) error {
	_, err := p.page.Context(ctx).Activate()
	return err
}

func (p *Page) Close(ctx context.Context) error {
	return p.page.Context(ctx).Close()
}

func (p *Page) MouseMove(ctx context.Context, pt geometry.Point) error {
	return p.page.Context(ctx).Mouse.MoveTo(proto.Point{X: pt.X, Y: pt.Y})
}

func (p *Page) MouseDown(ctx context.Context) error {
	return p.page.Context(ctx).Mouse.Down(proto.InputMouseButtonLeft, 1)
}

func (p *Page) MouseUp(ctx context.Context) error {
	return p.page.Context(ctx).Mouse.Up(proto.InputMouseButtonLeft, 1)
}

func (p *Page) MouseClick(ctx context.Context, pt geometry.Point) error {
	mouse := p.page.Context(ctx).Mouse
	if err := mouse.MoveTo(proto.Point{X: pt.X, Y: pt.Y}); err != nil {
		return fmt.Errorf("mouse move: %w", err)
	}
	return mouse.Click(proto.InputMouseButtonLeft, 1)
}

func (p *Page) MouseWheel(ctx context.Context, dx, dy float64) error {
	return p.page.Context(ctx).Mouse.Scroll(dx, dy, 1)
}

func (p *Page) TypeText(ctx context.Context, text string) error {
	return p.page.Context(ctx).InsertText(text)
}

func (p *Page) PressKeys(ctx context.Context, combo string) error {
	mods, key, err := ParseCombo(combo)
	if err != nil {
		return err
	}
	return p.page.Context(ctx).KeyActions().Press(mods...).Type(key).Do()
}

func (p *Page) Cookies(ctx context.Context) ([]entity.Cookie, error) {
	raw, err := p.page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	out := make([]entity.Cookie, 0, len(raw))
	for _, c := range raw {
		out = append(out, entity.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out, nil
}

func (p *Page) SetCookie(ctx context.Context, c entity.Cookie) error {
	param := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		URL:      c.URL,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: proto.NetworkCookieSameSite(c.SameSite),
	}
	if c.Expires > 0 {
		param.Expires = proto.TimeSinceEpoch(c.Expires)
	}
	if err := p.page.Context(ctx).SetCookies([]*proto.NetworkCookieParam{param}); err != nil {
		return fmt.Errorf("failed to set cookie %q: %w", c.Name, err)
	}
	return nil
}

func (p *Page) ClearCookies(ctx context.Context) error {
	return p.page.Context(ctx).SetCookies(nil)
}

func (p *Page) EmulateNetwork(ctx context.Context, n entity.NetworkConditions) error {
	req := proto.NetworkEmulateNetworkConditions{
		Offline:            n.Offline,
		Latency:            n.Latency,
		DownloadThroughput: n.DownloadThroughput,
		UploadThroughput:   n.UploadThroughput,
		ConnectionType:     proto.NetworkConnectionType(n.ConnectionType),
	}
	if err := req.Call(p.page.Context(ctx)); err != nil {
		return fmt.Errorf("network emulation failed: %w", err)
	}
	return nil
}

// maxFrameDepth bounds the walk through nested iframes.
const maxFrameDepth = 8

// Frames lists every child frame depth-first in document order, nested
// frames included. The main frame is not part of the list.
// Frames whose content is not reachable (e.g. not yet attached) are skipped.
func (p *Page) Frames(ctx context.Context) ([]output.FramePort, error) {
	var out []output.FramePort
	if err := collectFrames(ctx, p.page, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectFrames(ctx context.Context, doc *rod.Page, depth int, out *[]output.FramePort) error {
	if depth >= maxFrameDepth {
		return nil
	}
	els, err := doc.Context(ctx).Elements("iframe")
	if err != nil {
		if depth > 0 {
			return nil
		}
		return fmt.Errorf("failed to list frames: %w", err)
	}
	for _, el := range els {
		f, err := frameOf(el)
		if err != nil {
			continue
		}
		*out = append(*out, f)
		if err := collectFrames(ctx, f.target, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) FrameByElement(ctx context.Context, selector string) (output.FramePort, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return nil, fmt.Errorf("frame %q: %w", selector, entity.ErrFrameNotFound)
	}
	f, err := frameOf(el)
	if err != nil {
		return nil, fmt.Errorf("frame %q: %w", selector, entity.ErrFrameNotFound)
	}
	return f, nil
}

// Frame is the content document of an iframe.
type Frame struct {
	execContext
	name string
}

func frameOf(el *rod.Element) (*Frame, error) {
	tag, err := el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return nil, err
	}
	if t := tag.Value.Str(); t != "iframe" && t != "frame" {
		return nil, errors.New("element is not a frame")
	}
	fr, err := el.Frame()
	if err != nil {
		return nil, err
	}
	name := ""
	for _, attr := range []string{"name", "id"} {
		if v, err := el.Attribute(attr); err == nil && v != nil && strings.TrimSpace(*v) != "" {
			name = *v
			break
		}
	}
	return &Frame{execContext: execContext{target: fr}, name: name}, nil
}

func (f *Frame) Name() string { return f.name }
