// Package fake provides in-memory implementations of the browser ports so the
// engines can be exercised without Chrome.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
)

var (
	_ output.BrowserPort = (*Browser)(nil)
	_ output.PagePort    = (*Page)(nil)
	_ output.FramePort   = (*Frame)(nil)
	_ output.ElementPort = (*Element)(nil)
)

// EvalFunc answers a script evaluation. The returned value is round-tripped
// through JSON into the caller's result.
type EvalFunc func(js string, args ...any) (any, error)

type Browser struct {
	mu sync.Mutex

	Pages      []*Page
	NewPageErr error
	// PageFactory customizes pages created by NewPage.
	PageFactory func() *Page
	Closed      bool
}

func NewBrowser() *Browser {
	return &Browser{}
}

func (b *Browser) NewPage(ctx context.Context) (output.PagePort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	var p *Page
	if b.PageFactory != nil {
		p = b.PageFactory()
	} else {
		p = NewPage("about:blank")
	}
	b.Pages = append(b.Pages, p)
	return p, nil
}

func (b *Browser) Version(ctx context.Context) (string, error) {
	return "HeadlessChrome/fake", nil
}

func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
}

// context is shared by pages and frames.
type execContext struct {
	Elements map[string]*Element
	OnEval   EvalFunc
	Markup   string
	Scripts  []string
}

func (c *execContext) eval(js string, result any, args ...any) error {
	c.Scripts = append(c.Scripts, js)
	if c.OnEval == nil {
		return nil
	}
	v, err := c.OnEval(js, args...)
	if err != nil {
		return err
	}
	if result == nil || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func (c *execContext) query(selector string) (output.ElementPort, error) {
	for _, part := range strings.Split(selector, ",") {
		if el, ok := c.Elements[strings.TrimSpace(part)]; ok {
			return el, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", selector, entity.ErrElementNotFound)
}

type Page struct {
	execContext

	URL   string
	Title string
	// Loads maps a URL to the title the page gets after navigating there.
	Loads map[string]string

	NavigateErr   error
	NavigateDelay time.Duration
	IdleErr       error
	ScreenshotErr error
	Shot          *entity.Screenshot
	PDFData       []byte
	PDFErr        error
	MouseErr      error
	CloseErr      error

	Jar             []entity.Cookie
	SetCookieErr    error
	DropCookies     bool
	Network         *entity.NetworkConditions
	FrameList       []*Frame
	History         []string
	Closed          bool
	Activated       int
	LastPDFOptions  *entity.PDFOptions
	LastShotOptions *entity.ScreenshotOptions

	mu      sync.Mutex
	Actions []string
	Moves   []geometry.Point
}

func NewPage(url string) *Page {
	return &Page{
		execContext: execContext{Elements: map[string]*Element{}},
		URL:         url,
		Loads:       map[string]string{},
	}
}

// AddElement registers el under each selector.
func (p *Page) AddElement(el *Element, selectors ...string) *Element {
	for _, s := range selectors {
		p.Elements[s] = el
	}
	el.page = p
	return el
}

func (p *Page) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Actions = append(p.Actions, fmt.Sprintf(format, args...))
}

// Recorded returns a copy of the input log.
func (p *Page) Recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Actions...)
}

func (p *Page) Eval(ctx context.Context, js string, result any, args ...any) error {
	return p.eval(js, result, args...)
}

func (p *Page) Query(ctx context.Context, selector string) (output.ElementPort, error) {
	return p.query(selector)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.Markup, nil
}

func (p *Page) Info(ctx context.Context) (*entity.PageInfo, error) {
	return &entity.PageInfo{URL: p.URL, Title: p.Title}, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if p.NavigateDelay > 0 {
		select {
		case <-time.After(p.NavigateDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	if p.URL != "" {
		p.History = append(p.History, p.URL)
	}
	p.URL = url
	p.Title = p.Loads[url]
	p.record("navigate %s", url)
	return nil
}

func (p *Page) WaitIdle(ctx context.Context, timeout time.Duration) error {
	return p.IdleErr
}

func (p *Page) Back(ctx context.Context) error {
	if len(p.History) == 0 {
		return nil
	}
	p.URL = p.History[len(p.History)-1]
	p.History = p.History[:len(p.History)-1]
	p.record("back")
	return nil
}

func (p *Page) Forward(ctx context.Context) error {
	p.record("forward")
	return nil
}

func (p *Page) Reload(ctx context.Context) error {
	p.record("reload")
	return nil
}

func (p *Page) Activate(ctx context.Context) error {
	p.Activated++
	return nil
}

func (p *Page) Close(ctx context.Context) error {
	if p.CloseErr != nil {
		return p.CloseErr
	}
	p.Closed = true
	return nil
}

func (p *Page) MouseMove(ctx context.Context, pt geometry.Point) error {
	if p.MouseErr != nil {
		return p.MouseErr
	}
	p.mu.Lock()
	p.Moves = append(p.Moves, pt)
	p.mu.Unlock()
	p.record("mouse.move %g,%g", pt.X, pt.Y)
	return nil
}

func (p *Page) MouseDown(ctx context.Context) error {
	if p.MouseErr != nil {
		return p.MouseErr
	}
	p.record("mouse.down")
	return nil
}

func (p *Page) MouseUp(ctx context.Context) error {
	if p.MouseErr != nil {
		return p.MouseErr
	}
	p.record("mouse.up")
	return nil
}

func (p *Page) MouseClick(ctx context.Context, pt geometry.Point) error {
	if p.MouseErr != nil {
		return p.MouseErr
	}
	p.record("mouse.click %g,%g", pt.X, pt.Y)
	return nil
}

func (p *Page) MouseWheel(ctx context.Context, dx, dy float64) error {
	p.record("mouse.wheel %g,%g", dx, dy)
	return nil
}

func (p *Page) TypeText(ctx context.Context, text string) error {
	p.record("keyboard.type %s", text)
	return nil
}

func (p *Page) PressKeys(ctx context.Context, combo string) error {
	p.record("keyboard.press %s", combo)
	return nil
}

func (p *Page) Screenshot(ctx context.Context, opts entity.ScreenshotOptions) (*entity.Screenshot, error) {
	p.LastShotOptions = &opts
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	if p.Shot != nil {
		return p.Shot, nil
	}
	return &entity.Screenshot{Data: []byte("fake-image"), Format: string(opts.Format), Width: 1280, Height: 720}, nil
}

func (p *Page) PDF(ctx context.Context, opts entity.PDFOptions) ([]byte, error) {
	p.LastPDFOptions = &opts
	if p.PDFErr != nil {
		return nil, p.PDFErr
	}
	return p.PDFData, nil
}

func (p *Page) Cookies(ctx context.Context) ([]entity.Cookie, error) {
	return append([]entity.Cookie(nil), p.Jar...), nil
}

func (p *Page) SetCookie(ctx context.Context, cookie entity.Cookie) error {
	if p.SetCookieErr != nil {
		return p.SetCookieErr
	}
	if p.DropCookies {
		return nil
	}
	for i, c := range p.Jar {
		if c.Name == cookie.Name {
			p.Jar[i] = cookie
			return nil
		}
	}
	p.Jar = append(p.Jar, cookie)
	return nil
}

func (p *Page) ClearCookies(ctx context.Context) error {
	p.Jar = nil
	return nil
}

func (p *Page) EmulateNetwork(ctx context.Context, conditions entity.NetworkConditions) error {
	p.Network = &conditions
	return nil
}

func (p *Page) Frames(ctx context.Context) ([]output.FramePort, error) {
	out := make([]output.FramePort, 0, len(p.FrameList))
	for _, f := range p.FrameList {
		out = append(out, f)
	}
	return out, nil
}

func (p *Page) FrameByElement(ctx context.Context, selector string) (output.FramePort, error) {
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		for _, f := range p.FrameList {
			for _, s := range f.Selectors {
				if s == part {
					return f, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%s: %w", selector, entity.ErrElementNotFound)
}

type Frame struct {
	execContext

	FrameName string
	// Selectors are the iframe element selectors that resolve to this frame.
	Selectors []string
}

func NewFrame(name string, selectors ...string) *Frame {
	return &Frame{
		execContext: execContext{Elements: map[string]*Element{}},
		FrameName:   name,
		Selectors:   selectors,
	}
}

func (f *Frame) Name() string { return f.FrameName }

func (f *Frame) Eval(ctx context.Context, js string, result any, args ...any) error {
	return f.eval(js, result, args...)
}

func (f *Frame) Query(ctx context.Context, selector string) (output.ElementPort, error) {
	return f.query(selector)
}

func (f *Frame) HTML(ctx context.Context) (string, error) {
	return f.Markup, nil
}

type Element struct {
	Tag        string
	Attributes map[string]string
	Rect       geometry.Rect
	Value      string
	Choices    []entity.DropdownOption

	ClickErr error
	FillErr  error
	BoxErr   error

	Clicks  int
	Focused bool

	page *Page
}

func (e *Element) Click(ctx context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	if e.page != nil {
		e.page.record("element.click %s", e.Tag)
	}
	return nil
}

func (e *Element) Focus(ctx context.Context) error {
	e.Focused = true
	return nil
}

func (e *Element) Fill(ctx context.Context, text string) error {
	if e.FillErr != nil {
		return e.FillErr
	}
	e.Value = text
	if e.page != nil {
		e.page.record("element.fill %s", text)
	}
	return nil
}

func (e *Element) Describe(ctx context.Context) (string, map[string]string, error) {
	return e.Tag, e.Attributes, nil
}

func (e *Element) Box(ctx context.Context) (geometry.Rect, error) {
	if e.BoxErr != nil {
		return geometry.Rect{}, e.BoxErr
	}
	return e.Rect, nil
}

func (e *Element) Options(ctx context.Context) ([]entity.DropdownOption, error) {
	return e.Choices, nil
}

func (e *Element) SelectOption(ctx context.Context, text string) error {
	for i, c := range e.Choices {
		if c.Text == text || c.Value == text {
			for j := range e.Choices {
				e.Choices[j].Selected = j == i
			}
			e.Value = c.Value
			return nil
		}
	}
	return fmt.Errorf("option %q: %w", text, entity.ErrElementNotFound)
}
