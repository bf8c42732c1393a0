package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.ElementPort = (*Element)(nil)

type Element struct {
	el *rod.Element
}

func (e *Element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *Element) Focus(ctx context.Context) error {
	return e.el.Context(ctx).Focus()
}

func (e *Element) Fill(ctx context.Context, text string) error {
	el := e.el.Context(ctx)
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focus failed: %w", err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text failed: %w", err)
	}
	if text == "" {
		return el.Type(input.Backspace)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

type description struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes"`
}

const describeScript = `() => {
	const attributes = {};
	for (const a of this.attributes) attributes[a.name] = a.value;
	return { tag: this.tagName.toLowerCase(), attributes };
}`

func (e *Element) Describe(ctx context.Context) (string, map[string]string, error) {
	res, err := e.el.Context(ctx).Eval(describeScript)
	if err != nil {
		return "", nil, fmt.Errorf("describe failed: %w", err)
	}
	var d description
	if err := res.Value.Unmarshal(&d); err != nil {
		return "", nil, fmt.Errorf("decoding element description: %w", err)
	}
	return d.Tag, d.Attributes, nil
}

func (e *Element) Box(ctx context.Context) (geometry.Rect, error) {
	shape, err := e.el.Context(ctx).Shape()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("reading element shape: %w", err)
	}
	box := shape.Box()
	if box == nil {
		return geometry.Rect{}, fmt.Errorf("element has no layout box: %w", entity.ErrElementNotFound)
	}
	return geometry.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

const optionsScript = `() => Array.from(this.options || []).map((o, i) => ({
	index: i,
	text: o.text,
	value: o.value,
	selected: o.selected,
}))`

func (e *Element) Options(ctx context.Context) ([]entity.DropdownOption, error) {
	res, err := e.el.Context(ctx).Eval(optionsScript)
	if err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}
	var opts []entity.DropdownOption
	if err := res.Value.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	return opts, nil
}

// SelectOption matches on the visible text first and on the option value second.
func (e *Element) SelectOption(ctx context.Context, text string) error {
	el := e.el.Context(ctx)
	err := el.Select([]string{text}, true, rod.SelectorTypeText)
	if err == nil {
		return nil
	}
	var notFound *rod.ElementNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("select failed: %w", err)
	}

	value := `option[value="` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text) + `"]`
	if err := el.Select([]string{value}, true, rod.SelectorTypeCSSSector); err != nil {
		if errors.As(err, &notFound) {
			return fmt.Errorf("option %q: %w", text, entity.ErrElementNotFound)
		}
		return fmt.Errorf("select failed: %w", err)
	}
	return nil
}
