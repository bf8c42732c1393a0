package action

import (
	"context"
	"fmt"

	"browser-automation/internal/domain/entity"
)

func tabProps() map[string]interface{} {
	return map[string]interface{}{
		"page_id": prop("integer", "Zero-based tab index"),
	}
}

// tabIndex accepts page_id and the older tab_index spelling.
func tabIndex(args string) (int, error) {
	var input struct {
		PageID   *int `json:"page_id"`
		TabIndex *int `json:"tab_index"`
	}
	if err := decode(args, &input); err != nil {
		return 0, err
	}
	idx := firstPtr(input.PageID, input.TabIndex)
	if idx == nil {
		return 0, fmt.Errorf("page_id is required: %w", entity.ErrInvalidArguments)
	}
	return *idx, nil
}

type SwitchTabAction struct {
	d *Deps
}

func NewSwitchTabAction(d *Deps) *SwitchTabAction {
	return &SwitchTabAction{d: d}
}

func (a *SwitchTabAction) Name() entity.ActionName            { return entity.ActionSwitchTab }
func (a *SwitchTabAction) Description() string                { return "Makes another tab current" }
func (a *SwitchTabAction) Parameters() map[string]interface{} { return object(tabProps(), "page_id") }

func (a *SwitchTabAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	idx, err := tabIndex(args)
	if err != nil {
		return nil, err
	}
	if err := a.d.Session.SwitchTab(ctx, idx); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Switched to tab %d", idx)}, nil
}

type OpenTabAction struct {
	d *Deps
}

func NewOpenTabAction(d *Deps) *OpenTabAction {
	return &OpenTabAction{d: d}
}

func (a *OpenTabAction) Name() entity.ActionName { return entity.ActionOpenTab }
func (a *OpenTabAction) Description() string     { return "Opens a new tab and makes it current" }
func (a *OpenTabAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"url": prop("string", "URL to load in the new tab, blank when omitted"),
	})
}

func (a *OpenTabAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if _, err := a.d.Session.OpenTab(ctx, input.URL); err != nil {
		return nil, err
	}
	msg := "Opened new tab"
	if input.URL != "" {
		msg = fmt.Sprintf("Opened new tab with URL %s", input.URL)
	}
	return &entity.ActionOutput{
		Message: msg,
		Content: map[string]any{"page_id": a.d.Session.CurrentIndex()},
	}, nil
}

type CloseTabAction struct {
	d *Deps
}

func NewCloseTabAction(d *Deps) *CloseTabAction {
	return &CloseTabAction{d: d}
}

func (a *CloseTabAction) Name() entity.ActionName            { return entity.ActionCloseTab }
func (a *CloseTabAction) Description() string                { return "Closes a tab" }
func (a *CloseTabAction) Parameters() map[string]interface{} { return object(tabProps(), "page_id") }

func (a *CloseTabAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	idx, err := tabIndex(args)
	if err != nil {
		return nil, err
	}
	if err := a.d.Session.CloseTab(ctx, idx); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Closed tab %d", idx)}, nil
}

type ListTabsAction struct {
	d *Deps
}

func NewListTabsAction(d *Deps) *ListTabsAction {
	return &ListTabsAction{d: d}
}

func (a *ListTabsAction) Name() entity.ActionName            { return entity.ActionListTabs }
func (a *ListTabsAction) Description() string                { return "Lists open tabs" }
func (a *ListTabsAction) Parameters() map[string]interface{} { return object(map[string]interface{}{}) }

func (a *ListTabsAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	tabs := a.d.Session.Tabs(ctx)
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Found %d open tabs", len(tabs)),
		Content: map[string]any{"tabs": tabs, "current": a.d.Session.CurrentIndex()},
	}, nil
}
