// Package session tracks the open tabs of the browser and the execution
// context (page or frame) that actions run against.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
)

type Timeouts struct {
	// Navigation bounds the wait for DOMContentLoaded and fails the call.
	Navigation time.Duration
	// NetworkIdle bounds the follow-up wait for a quiet network. Expiry is logged only.
	NetworkIdle time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{Navigation: 60 * time.Second, NetworkIdle: 10 * time.Second}
}

// Registry holds the ordered tabs, the current tab pointer and an optional
// frame override. It is not safe for concurrent use; callers serialize.
type Registry struct {
	browser  output.BrowserPort
	pages    []output.PagePort
	current  int
	frame    output.FramePort
	timeouts Timeouts
	logger   output.LoggerPort
}

// New opens the initial tab.
func New(ctx context.Context, browser output.BrowserPort, timeouts Timeouts, logger output.LoggerPort) (*Registry, error) {
	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, entity.Upstream("open initial page", err)
	}
	return &Registry{
		browser:  browser,
		pages:    []output.PagePort{page},
		timeouts: timeouts,
		logger:   logger,
	}, nil
}

func (r *Registry) Timeouts() Timeouts {
	return r.timeouts
}

func (r *Registry) Count() int {
	return len(r.pages)
}

func (r *Registry) CurrentIndex() int {
	return r.current
}

// CurrentPage is the active tab. Pointer and keyboard input always go here.
func (r *Registry) CurrentPage() (output.PagePort, error) {
	if len(r.pages) == 0 {
		return nil, fmt.Errorf("no open tabs: %w", entity.ErrInvalidOperation)
	}
	return r.pages[r.current], nil
}

// ExecutionContext is the selected frame if any, else the active tab.
func (r *Registry) ExecutionContext() (output.ExecutionContext, error) {
	if r.frame != nil {
		return r.frame, nil
	}
	return r.CurrentPage()
}

// InFrame reports whether a frame override is active.
func (r *Registry) InFrame() bool {
	return r.frame != nil
}

// Navigate loads url in the active tab and drops the frame override.
func (r *Registry) Navigate(ctx context.Context, url string) error {
	page, err := r.CurrentPage()
	if err != nil {
		return err
	}
	r.frame = nil
	return r.Load(ctx, page, url)
}

// Load navigates page to url with a hard DOMContentLoaded deadline followed
// by a soft network idle wait.
func (r *Registry) Load(ctx context.Context, page output.PagePort, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, r.timeouts.Navigation)
	defer cancel()

	if err := page.Navigate(navCtx, url); err != nil {
		return entity.Upstream(fmt.Sprintf("navigate to %s", url), err)
	}
	r.WaitIdle(ctx, page, r.timeouts.NetworkIdle)
	return nil
}

// WaitIdle waits for network idle without ever failing.
func (r *Registry) WaitIdle(ctx context.Context, page output.PagePort, timeout time.Duration) {
	if err := page.WaitIdle(ctx, timeout); err != nil {
		r.logger.Warn("Network idle wait expired", "timeout", timeout.String(), "error", err)
	}
}

// OpenTab creates a tab, loads url in it and makes it current.
func (r *Registry) OpenTab(ctx context.Context, url string) (output.PagePort, error) {
	page, err := r.browser.NewPage(ctx)
	if err != nil {
		return nil, entity.Upstream("open tab", err)
	}
	if url != "" {
		if err := r.Load(ctx, page, url); err != nil {
			if cerr := page.Close(ctx); cerr != nil {
				r.logger.Warn("Closing failed tab", "error", cerr)
			}
			return nil, err
		}
	}

	r.pages = append(r.pages, page)
	r.current = len(r.pages) - 1
	r.frame = nil
	r.logger.Info("Tab opened", "index", r.current, "url", url)
	return page, nil
}

// CloseTab closes the tab at index. The last remaining tab cannot be closed.
func (r *Registry) CloseTab(ctx context.Context, index int) error {
	if len(r.pages) <= 1 {
		return fmt.Errorf("cannot close the last tab: %w", entity.ErrInvalidOperation)
	}
	if index < 0 || index >= len(r.pages) {
		return fmt.Errorf("tab %d of %d: %w", index, len(r.pages), entity.ErrIndexOutOfRange)
	}

	if err := r.pages[index].Close(ctx); err != nil {
		return entity.Upstream("close tab", err)
	}
	r.pages = append(r.pages[:index], r.pages[index+1:]...)

	if index <= r.current {
		r.current = max(0, r.current-1)
	}
	r.frame = nil
	r.activate(ctx)
	r.logger.Info("Tab closed", "index", index, "current", r.current)
	return nil
}

// SwitchTab makes the tab at index current and drops the frame override.
func (r *Registry) SwitchTab(ctx context.Context, index int) error {
	if index < 0 || index >= len(r.pages) {
		return fmt.Errorf("tab %d of %d: %w", index, len(r.pages), entity.ErrIndexOutOfRange)
	}
	r.current = index
	r.frame = nil
	r.activate(ctx)
	return nil
}

func (r *Registry) activate(ctx context.Context) {
	if err := r.pages[r.current].Activate(ctx); err != nil {
		r.logger.Warn("Bringing tab to front failed", "index", r.current, "error", err)
	}
}

// Tabs describes every open tab.
func (r *Registry) Tabs(ctx context.Context) []entity.TabInfo {
	tabs := make([]entity.TabInfo, 0, len(r.pages))
	for i, p := range r.pages {
		tab := entity.TabInfo{Index: i, Current: i == r.current}
		if info, err := p.Info(ctx); err == nil {
			tab.URL, tab.Title = info.URL, info.Title
		}
		tabs = append(tabs, tab)
	}
	return tabs
}

// SwitchFrame selects a frame of the active tab by index, frame name, or the
// name/id of its iframe element. Index 0 is the main frame; child frames
// follow depth-first from 1.
func (r *Registry) SwitchFrame(ctx context.Context, ref string) error {
	page, err := r.CurrentPage()
	if err != nil {
		return err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("empty frame reference: %w", entity.ErrInvalidArguments)
	}

	frames, err := page.Frames(ctx)
	if err != nil {
		return entity.Upstream("list frames", err)
	}

	if i, convErr := strconv.Atoi(ref); convErr == nil {
		if i < 0 || i > len(frames) {
			return fmt.Errorf("frame %d of %d: %w", i, len(frames)+1, entity.ErrIndexOutOfRange)
		}
		if i == 0 {
			r.frame = nil
			return nil
		}
		r.frame = frames[i-1]
		return nil
	}

	for _, f := range frames {
		if f.Name() == ref {
			r.frame = f
			return nil
		}
	}

	quoted := strings.ReplaceAll(ref, `"`, `\"`)
	frame, err := page.FrameByElement(ctx, fmt.Sprintf(`iframe[name="%s"], iframe[id="%s"]`, quoted, quoted))
	if err != nil {
		if errors.Is(err, entity.ErrElementNotFound) {
			return fmt.Errorf("frame %q: %w", ref, entity.ErrFrameNotFound)
		}
		return fmt.Errorf("frame %q: %w", ref, errors.Join(entity.ErrFrameNotFound, err))
	}
	r.frame = frame
	return nil
}

// ResetFrame returns to the top-level document of the active tab.
func (r *Registry) ResetFrame() {
	r.frame = nil
}

// Close closes every tab. The browser itself is owned by the caller.
func (r *Registry) Close(ctx context.Context) {
	for i, p := range r.pages {
		if err := p.Close(ctx); err != nil {
			r.logger.Warn("Closing tab failed", "index", i, "error", err)
		}
	}
	r.pages = nil
	r.current = 0
	r.frame = nil
}
