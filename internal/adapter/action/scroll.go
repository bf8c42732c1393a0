package action

import (
	"context"
	"fmt"
	"strings"

	"browser-automation/internal/domain/entity"
)

const (
	defaultScrollAmount = 300
	// scrollTextMargin keeps found text this far below the top edge.
	scrollTextMargin = 100
)

const (
	scrollByScript  = `(dy) => { window.scrollBy(0, dy); }`
	scrollTopScript = `() => { window.scrollTo(0, 0); }`
	scrollEndScript = `() => { window.scrollTo(0, document.documentElement.scrollHeight || document.body.scrollHeight); }`
)

const scrollToTextScript = `(needle, margin) => {
	const want = needle.toLowerCase();
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
	let node;
	while ((node = walker.nextNode())) {
		if (!node.textContent.toLowerCase().includes(want)) continue;
		const range = document.createRange();
		range.selectNodeContents(node);
		const rect = range.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) continue;
		window.scrollTo(0, Math.max(0, rect.top + window.scrollY - margin));
		return true;
	}
	return false;
}`

type ScrollAction struct {
	d    *Deps
	down bool
}

func NewScrollAction(d *Deps, down bool) *ScrollAction {
	return &ScrollAction{d: d, down: down}
}

func (a *ScrollAction) Name() entity.ActionName {
	if a.down {
		return entity.ActionScrollDown
	}
	return entity.ActionScrollUp
}

func (a *ScrollAction) Description() string {
	if a.down {
		return "Scrolls the page down"
	}
	return "Scrolls the page up"
}

func (a *ScrollAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"amount": prop("integer", "Pixels to scroll, default 300"),
	})
}

func (a *ScrollAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Amount *int `json:"amount"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	amount := firstOf(defaultScrollAmount, input.Amount)
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative: %w", entity.ErrInvalidArguments)
	}
	ec, err := a.d.Session.ExecutionContext()
	if err != nil {
		return nil, err
	}
	dy, direction := amount, "down"
	if !a.down {
		dy, direction = -amount, "up"
	}
	if err := ec.Eval(ctx, scrollByScript, nil, dy); err != nil {
		return nil, entity.Upstream("scroll", err)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Scrolled %s by %d pixels", direction, amount)}, nil
}

type ScrollToTextAction struct {
	d *Deps
}

func NewScrollToTextAction(d *Deps) *ScrollToTextAction {
	return &ScrollToTextAction{d: d}
}

func (a *ScrollToTextAction) Name() entity.ActionName { return entity.ActionScrollToText }
func (a *ScrollToTextAction) Description() string     { return "Scrolls to the first occurrence of a text" }
func (a *ScrollToTextAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"text": prop("string", "Text to look for, case-insensitive"),
	}, "text")
}

func (a *ScrollToTextAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Text string `json:"text"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("text is required: %w", entity.ErrInvalidArguments)
	}
	ec, err := a.d.Session.ExecutionContext()
	if err != nil {
		return nil, err
	}
	var found bool
	if err := ec.Eval(ctx, scrollToTextScript, &found, input.Text, scrollTextMargin); err != nil {
		return nil, entity.Upstream("scroll to text", err)
	}
	if !found {
		return nil, fmt.Errorf("text %q: %w", input.Text, entity.ErrElementNotFound)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Scrolled to text: %s", input.Text)}, nil
}

type ScrollToEdgeAction struct {
	d   *Deps
	top bool
}

func NewScrollToEdgeAction(d *Deps, top bool) *ScrollToEdgeAction {
	return &ScrollToEdgeAction{d: d, top: top}
}

func (a *ScrollToEdgeAction) Name() entity.ActionName {
	if a.top {
		return entity.ActionScrollToTop
	}
	return entity.ActionScrollToBottom
}

func (a *ScrollToEdgeAction) Description() string {
	if a.top {
		return "Scrolls to the top of the page"
	}
	return "Scrolls to the bottom of the page"
}

func (a *ScrollToEdgeAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (a *ScrollToEdgeAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	ec, err := a.d.Session.ExecutionContext()
	if err != nil {
		return nil, err
	}
	script, msg := scrollEndScript, "Scrolled to bottom of page"
	if a.top {
		script, msg = scrollTopScript, "Scrolled to top of page"
	}
	if err := ec.Eval(ctx, script, nil); err != nil {
		return nil, entity.Upstream("scroll", err)
	}
	return &entity.ActionOutput{Message: msg}, nil
}
