package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"browser-automation/internal/domain/entity"
)

const searchURL = "https://www.google.com"

type NavigateAction struct {
	d *Deps
}

func NewNavigateAction(d *Deps) *NavigateAction {
	return &NavigateAction{d: d}
}

func (a *NavigateAction) Name() entity.ActionName { return entity.ActionNavigateTo }
func (a *NavigateAction) Description() string     { return "Navigates the current tab to a URL" }
func (a *NavigateAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"url": prop("string", "URL to navigate to"),
	}, "url")
}

func (a *NavigateAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.URL) == "" {
		return nil, fmt.Errorf("url is required: %w", entity.ErrInvalidArguments)
	}
	if err := a.d.Session.Navigate(ctx, input.URL); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Navigated to %s", input.URL)}, nil
}

type SearchGoogleAction struct {
	d *Deps
}

func NewSearchGoogleAction(d *Deps) *SearchGoogleAction {
	return &SearchGoogleAction{d: d}
}

func (a *SearchGoogleAction) Name() entity.ActionName { return entity.ActionSearchGoogle }
func (a *SearchGoogleAction) Description() string     { return "Searches Google for a query" }
func (a *SearchGoogleAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"query": prop("string", "Search query"),
	}, "query")
}

func (a *SearchGoogleAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Query string `json:"query"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("query is required: %w", entity.ErrInvalidArguments)
	}
	if err := a.d.Session.Navigate(ctx, searchURL); err != nil {
		return nil, err
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.d.Timeouts.SearchInput)
	defer cancel()
	box, err := waitFor(waitCtx, page, `textarea[name="q"], input[name="q"]`)
	if err != nil {
		return nil, fmt.Errorf("search input: %w", err)
	}
	if err := box.Fill(ctx, input.Query); err != nil {
		return nil, entity.Upstream("fill search input", err)
	}
	if err := page.PressKeys(ctx, "Enter"); err != nil {
		return nil, entity.Upstream("submit search", err)
	}
	a.d.Session.WaitIdle(ctx, page, a.d.Session.Timeouts().NetworkIdle)
	return &entity.ActionOutput{Message: fmt.Sprintf("Searched for '%s' on Google", input.Query)}, nil
}

type GoBackAction struct {
	d *Deps
}

func NewGoBackAction(d *Deps) *GoBackAction {
	return &GoBackAction{d: d}
}

func (a *GoBackAction) Name() entity.ActionName            { return entity.ActionGoBack }
func (a *GoBackAction) Description() string                { return "Goes back in the tab history" }
func (a *GoBackAction) Parameters() map[string]interface{} { return object(map[string]interface{}{}) }

func (a *GoBackAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	if err := a.d.history(ctx, "go back", func(ctx context.Context) error {
		page, err := a.d.page()
		if err != nil {
			return err
		}
		return page.Back(ctx)
	}); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: "Navigated back"}, nil
}

type GoForwardAction struct {
	d *Deps
}

func NewGoForwardAction(d *Deps) *GoForwardAction {
	return &GoForwardAction{d: d}
}

func (a *GoForwardAction) Name() entity.ActionName            { return entity.ActionGoForward }
func (a *GoForwardAction) Description() string                { return "Goes forward in the tab history" }
func (a *GoForwardAction) Parameters() map[string]interface{} { return object(map[string]interface{}{}) }

func (a *GoForwardAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	if err := a.d.history(ctx, "go forward", func(ctx context.Context) error {
		page, err := a.d.page()
		if err != nil {
			return err
		}
		return page.Forward(ctx)
	}); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: "Navigated forward"}, nil
}

type RefreshAction struct {
	d *Deps
}

func NewRefreshAction(d *Deps) *RefreshAction {
	return &RefreshAction{d: d}
}

func (a *RefreshAction) Name() entity.ActionName            { return entity.ActionRefresh }
func (a *RefreshAction) Description() string                { return "Reloads the current page" }
func (a *RefreshAction) Parameters() map[string]interface{} { return object(map[string]interface{}{}) }

func (a *RefreshAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	if err := a.d.history(ctx, "reload", func(ctx context.Context) error {
		page, err := a.d.page()
		if err != nil {
			return err
		}
		return page.Reload(ctx)
	}); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: "Page refreshed"}, nil
}

type WaitAction struct {
	d *Deps
}

func NewWaitAction(d *Deps) *WaitAction {
	return &WaitAction{d: d}
}

func (a *WaitAction) Name() entity.ActionName { return entity.ActionWait }
func (a *WaitAction) Description() string     { return "Waits for a number of seconds" }
func (a *WaitAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"seconds": prop("number", "Seconds to wait, default 3"),
	})
}

func (a *WaitAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Seconds *float64 `json:"seconds"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	seconds := firstOf(3, input.Seconds)
	if seconds < 0 {
		return nil, fmt.Errorf("seconds must not be negative: %w", entity.ErrInvalidArguments)
	}
	if err := sleep(ctx, time.Duration(seconds*float64(time.Second))); err != nil {
		return nil, err
	}
	if page, err := a.d.page(); err == nil {
		a.d.Session.WaitIdle(ctx, page, a.d.Session.Timeouts().NetworkIdle)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Waited for %g seconds", seconds)}, nil
}

// history runs a history navigation under the history timeout, then drops
// any frame selection and soft-waits for network idle.
func (d *Deps) history(ctx context.Context, op string, fn func(context.Context) error) error {
	hctx, cancel := context.WithTimeout(ctx, d.Timeouts.History)
	defer cancel()
	if err := fn(hctx); err != nil {
		return entity.Upstream(op, err)
	}
	d.Session.ResetFrame()
	if page, err := d.page(); err == nil {
		d.Session.WaitIdle(ctx, page, d.Session.Timeouts().NetworkIdle)
	}
	return nil
}
