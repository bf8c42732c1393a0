package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
	"browser-automation/internal/usecase/dom"
)

// targetRef picks the index when given, otherwise the selector.
func targetRef(index *int, selector string) (dom.Reference, error) {
	if index != nil {
		return dom.ByIndex(*index), nil
	}
	if strings.TrimSpace(selector) != "" {
		return dom.BySelector(selector), nil
	}
	return dom.Reference{}, fmt.Errorf("index or selector is required: %w", entity.ErrInvalidArguments)
}

// resolve captures a fresh snapshot and resolves ref against it.
func (d *Deps) resolve(ctx context.Context, ref dom.Reference) (*dom.Target, output.ExecutionContext, error) {
	snap, ec, err := d.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	t, err := d.Engine.Resolve(ctx, snap, ec, ref)
	if err != nil {
		return nil, nil, err
	}
	return t, ec, nil
}

func via(loc dom.Locator) string {
	if loc.ByPoint() {
		return fmt.Sprintf(" at (%g, %g)", loc.Point.X, loc.Point.Y)
	}
	return ""
}

type ClickElementAction struct {
	d *Deps
}

func NewClickElementAction(d *Deps) *ClickElementAction {
	return &ClickElementAction{d: d}
}

func (a *ClickElementAction) Name() entity.ActionName { return entity.ActionClickElement }
func (a *ClickElementAction) Description() string     { return "Clicks an element by index or selector" }
func (a *ClickElementAction) Parameters() map[string]interface{} {
	return object(targetProps(nil))
}

func (a *ClickElementAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Index    *int   `json:"index"`
		Selector string `json:"selector"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	ref, err := targetRef(input.Index, input.Selector)
	if err != nil {
		return nil, err
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	t, ec, err := a.d.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	used, err := a.d.Engine.Attempt(ctx, t, func(ctx context.Context, loc dom.Locator) error {
		if loc.ByPoint() {
			return page.MouseClick(ctx, loc.Point)
		}
		cctx, cancel := context.WithTimeout(ctx, a.d.Timeouts.Click)
		defer cancel()
		el, err := ec.Query(cctx, loc.Selector)
		if err != nil {
			return err
		}
		if t.TextEntry {
			if err := el.Focus(cctx); err != nil {
				return err
			}
		}
		return el.Click(cctx)
	})
	if err != nil {
		return nil, entity.Upstream("click "+ref.String(), err)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Clicked element with %s%s", ref, via(used))}, nil
}

type ClickCoordinatesAction struct {
	d *Deps
}

func NewClickCoordinatesAction(d *Deps) *ClickCoordinatesAction {
	return &ClickCoordinatesAction{d: d}
}

func (a *ClickCoordinatesAction) Name() entity.ActionName { return entity.ActionClickCoordinates }
func (a *ClickCoordinatesAction) Description() string     { return "Clicks at viewport coordinates" }
func (a *ClickCoordinatesAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"x": prop("number", "Horizontal viewport position in CSS pixels"),
		"y": prop("number", "Vertical viewport position in CSS pixels"),
	}, "x", "y")
}

func (a *ClickCoordinatesAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.X == nil || input.Y == nil {
		return nil, fmt.Errorf("x and y are required: %w", entity.ErrInvalidArguments)
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	p := geometry.Point{X: *input.X, Y: *input.Y}
	if err := page.MouseClick(ctx, p); err != nil {
		return nil, entity.Upstream("click coordinates", err)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Clicked at coordinates (%g, %g)", p.X, p.Y)}, nil
}

type InputTextAction struct {
	d *Deps
}

func NewInputTextAction(d *Deps) *InputTextAction {
	return &InputTextAction{d: d}
}

func (a *InputTextAction) Name() entity.ActionName { return entity.ActionInputText }
func (a *InputTextAction) Description() string     { return "Replaces the content of an element with text" }
func (a *InputTextAction) Parameters() map[string]interface{} {
	return object(targetProps(map[string]interface{}{
		"text": prop("string", "Text to write"),
	}), "text")
}

func (a *InputTextAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Index    *int    `json:"index"`
		Selector string  `json:"selector"`
		Text     *string `json:"text"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.Text == nil {
		return nil, fmt.Errorf("text is required: %w", entity.ErrInvalidArguments)
	}
	ref, err := targetRef(input.Index, input.Selector)
	if err != nil {
		return nil, err
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	t, ec, err := a.d.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	text := *input.Text
	used, err := a.d.Engine.Attempt(ctx, t, func(ctx context.Context, loc dom.Locator) error {
		if loc.ByPoint() {
			return typeAt(ctx, page, loc.Point, text)
		}
		cctx, cancel := context.WithTimeout(ctx, a.d.Timeouts.Click)
		defer cancel()
		el, err := ec.Query(cctx, loc.Selector)
		if err != nil {
			return err
		}
		if t.TextEntry {
			if err := el.Focus(cctx); err != nil {
				return err
			}
		}
		return el.Fill(cctx, text)
	})
	if err != nil {
		return nil, entity.Upstream("input text into "+ref.String(), err)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Input '%s' into element with %s%s", text, ref, via(used))}, nil
}

// typeAt focuses whatever is under p, clears it and types text.
func typeAt(ctx context.Context, page output.PagePort, p geometry.Point, text string) error {
	if err := page.MouseClick(ctx, p); err != nil {
		return err
	}
	if err := page.PressKeys(ctx, "Control+a"); err != nil {
		return err
	}
	if err := page.PressKeys(ctx, "Backspace"); err != nil {
		return err
	}
	return page.TypeText(ctx, text)
}

var (
	namedKeys = map[string]bool{
		"Enter": true, "Tab": true, "Escape": true, "Backspace": true, "Delete": true, "Space": true,
		"ArrowDown": true, "ArrowUp": true, "ArrowLeft": true, "ArrowRight": true,
		"Home": true, "End": true, "PageUp": true, "PageDown": true, "Insert": true,
		"F1": true, "F2": true, "F3": true, "F4": true, "F5": true, "F6": true,
		"F7": true, "F8": true, "F9": true, "F10": true, "F11": true, "F12": true,
	}
	modifierKeys = map[string]bool{"Control": true, "Shift": true, "Alt": true, "Meta": true}
)

// IsKeyCombo reports whether keys names a key or a modifier combination
// such as "Control+a". Anything else is typed as text.
func IsKeyCombo(keys string) bool {
	if namedKeys[keys] {
		return true
	}
	parts := strings.Split(keys, "+")
	if len(parts) < 2 {
		return false
	}
	for _, m := range parts[:len(parts)-1] {
		if !modifierKeys[m] {
			return false
		}
	}
	last := parts[len(parts)-1]
	return namedKeys[last] || len([]rune(last)) == 1
}

type SendKeysAction struct {
	d *Deps
}

func NewSendKeysAction(d *Deps) *SendKeysAction {
	return &SendKeysAction{d: d}
}

func (a *SendKeysAction) Name() entity.ActionName { return entity.ActionSendKeys }
func (a *SendKeysAction) Description() string     { return "Presses a key, a key combination or types text" }
func (a *SendKeysAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"keys": prop("string", "Key name such as Enter, a combination such as Control+a, or text"),
	}, "keys")
}

func (a *SendKeysAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Keys string `json:"keys"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.Keys == "" {
		return nil, fmt.Errorf("keys is required: %w", entity.ErrInvalidArguments)
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	if IsKeyCombo(input.Keys) {
		err = page.PressKeys(ctx, input.Keys)
	} else {
		err = page.TypeText(ctx, input.Keys)
	}
	if err != nil {
		return nil, entity.Upstream("send keys", err)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Sent keys: %s", input.Keys)}, nil
}

type offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type endpointInput struct {
	ref    string
	offset *offset
	x, y   *float64
}

type DragDropAction struct {
	d *Deps
}

func NewDragDropAction(d *Deps) *DragDropAction {
	return &DragDropAction{d: d}
}

func (a *DragDropAction) Name() entity.ActionName { return entity.ActionDragDrop }
func (a *DragDropAction) Description() string     { return "Drags from one element or point to another" }
func (a *DragDropAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"source":          prop("string", "Source element index or selector"),
		"target":          prop("string", "Target element index or selector"),
		"source_offset_x": prop("number", "Horizontal offset added to the source point"),
		"source_offset_y": prop("number", "Vertical offset added to the source point"),
		"target_offset_x": prop("number", "Horizontal offset added to the target point"),
		"target_offset_y": prop("number", "Vertical offset added to the target point"),
		"source_x":        prop("number", "Source x when dragging by coordinates"),
		"source_y":        prop("number", "Source y when dragging by coordinates"),
		"target_x":        prop("number", "Target x when dragging by coordinates"),
		"target_y":        prop("number", "Target y when dragging by coordinates"),
		"steps":           prop("integer", "Intermediate pointer moves, default 10"),
		"delay_ms":        prop("integer", "Delay between moves in milliseconds, default 5"),
	})
}

func (a *DragDropAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Source        string   `json:"source"`
		Target        string   `json:"target"`
		SourceAlt     string   `json:"element_source"`
		TargetAlt     string   `json:"element_target"`
		SourceSel     string   `json:"source_selector"`
		TargetSel     string   `json:"target_selector"`
		SourceOffsetX *float64 `json:"source_offset_x"`
		SourceOffsetY *float64 `json:"source_offset_y"`
		TargetOffsetX *float64 `json:"target_offset_x"`
		TargetOffsetY *float64 `json:"target_offset_y"`
		SourceOffset  *offset  `json:"element_source_offset"`
		TargetOffset  *offset  `json:"element_target_offset"`
		SourceX       *float64 `json:"source_x"`
		SourceY       *float64 `json:"source_y"`
		TargetX       *float64 `json:"target_x"`
		TargetY       *float64 `json:"target_y"`
		CoordSourceX  *float64 `json:"coord_source_x"`
		CoordSourceY  *float64 `json:"coord_source_y"`
		CoordTargetX  *float64 `json:"coord_target_x"`
		CoordTargetY  *float64 `json:"coord_target_y"`
		Steps         *int     `json:"steps"`
		DelayMs       *int     `json:"delay_ms"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}

	src := endpointInput{
		ref:    firstNonEmpty(input.Source, input.SourceAlt, input.SourceSel),
		offset: offsetOf(input.SourceOffset, input.SourceOffsetX, input.SourceOffsetY),
		x:      firstPtr(input.SourceX, input.CoordSourceX),
		y:      firstPtr(input.SourceY, input.CoordSourceY),
	}
	dst := endpointInput{
		ref:    firstNonEmpty(input.Target, input.TargetAlt, input.TargetSel),
		offset: offsetOf(input.TargetOffset, input.TargetOffsetX, input.TargetOffsetY),
		x:      firstPtr(input.TargetX, input.CoordTargetX),
		y:      firstPtr(input.TargetY, input.CoordTargetY),
	}

	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	var snap *entity.PageSnapshot
	var ec output.ExecutionContext
	if src.ref != "" || dst.ref != "" {
		if snap, ec, err = a.d.snapshot(ctx); err != nil {
			return nil, err
		}
	}
	from, err := a.endpoint(ctx, snap, ec, "source", src)
	if err != nil {
		return nil, err
	}
	to, err := a.endpoint(ctx, snap, ec, "target", dst)
	if err != nil {
		return nil, err
	}

	plan := dom.DragPlan{
		From:  from,
		To:    to,
		Steps: firstOf(dom.DefaultDragSteps, input.Steps),
		Delay: time.Duration(firstOf(int(dom.DefaultDragDelay/time.Millisecond), input.DelayMs)) * time.Millisecond,
	}
	if err := dom.Drag(ctx, page, plan); err != nil {
		return nil, entity.Upstream("drag", err)
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Dragged from (%g, %g) to (%g, %g)", from.X, from.Y, to.X, to.Y),
	}, nil
}

func (a *DragDropAction) endpoint(ctx context.Context, snap *entity.PageSnapshot, ec output.ExecutionContext, name string, in endpointInput) (geometry.Point, error) {
	var p geometry.Point
	switch {
	case in.ref != "":
		var err error
		if p, err = a.d.Engine.Point(ctx, snap, ec, dom.ParseReference(in.ref)); err != nil {
			return geometry.Point{}, fmt.Errorf("drag %s: %w", name, err)
		}
	case in.x != nil && in.y != nil:
		p = geometry.Point{X: *in.x, Y: *in.y}
	default:
		return geometry.Point{}, fmt.Errorf("drag %s needs an element or coordinates: %w", name, entity.ErrInvalidArguments)
	}
	if in.offset != nil {
		p = geometry.Offset(p, in.offset.X, in.offset.Y)
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPtr[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func offsetOf(o *offset, x, y *float64) *offset {
	if o != nil {
		return o
	}
	if x == nil && y == nil {
		return nil
	}
	return &offset{X: firstOf(0, x), Y: firstOf(0, y)}
}

// optionsAtScript reads the options of the <select> under a viewport point.
const optionsAtScript = `(x, y) => {
	const hit = document.elementFromPoint(x, y);
	const select = hit && hit.closest('select');
	if (!select) return null;
	return Array.from(select.options).map((o, i) => ({
		index: i, text: o.text.trim(), value: o.value, selected: o.selected
	}));
}`

// selectAtScript selects the option of the <select> under a viewport point
// whose text or value matches.
const selectAtScript = `(x, y, wanted) => {
	const hit = document.elementFromPoint(x, y);
	const select = hit && hit.closest('select');
	if (!select) return false;
	const i = Array.from(select.options).findIndex(o => o.text.trim() === wanted || o.value === wanted);
	if (i < 0) return false;
	select.selectedIndex = i;
	select.dispatchEvent(new Event('input', { bubbles: true }));
	select.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

type GetDropdownOptionsAction struct {
	d *Deps
}

func NewGetDropdownOptionsAction(d *Deps) *GetDropdownOptionsAction {
	return &GetDropdownOptionsAction{d: d}
}

func (a *GetDropdownOptionsAction) Name() entity.ActionName { return entity.ActionGetDropdownOptions }
func (a *GetDropdownOptionsAction) Description() string     { return "Lists the options of a dropdown" }
func (a *GetDropdownOptionsAction) Parameters() map[string]interface{} {
	return object(targetProps(nil))
}

func (a *GetDropdownOptionsAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Index    *int   `json:"index"`
		Selector string `json:"selector"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	ref, err := targetRef(input.Index, input.Selector)
	if err != nil {
		return nil, err
	}
	t, ec, err := a.d.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var options []entity.DropdownOption
	_, err = a.d.Engine.Attempt(ctx, t, func(ctx context.Context, loc dom.Locator) error {
		if loc.ByPoint() {
			var found *[]entity.DropdownOption
			if err := ec.Eval(ctx, optionsAtScript, &found, loc.Point.X, loc.Point.Y); err != nil {
				return err
			}
			if found == nil {
				return fmt.Errorf("no dropdown at (%g, %g): %w", loc.Point.X, loc.Point.Y, entity.ErrElementNotFound)
			}
			options = *found
			return nil
		}
		el, err := ec.Query(ctx, loc.Selector)
		if err != nil {
			return err
		}
		options, err = el.Options(ctx)
		return err
	})
	if err != nil {
		return nil, entity.Upstream("dropdown options of "+ref.String(), err)
	}
	if options == nil {
		options = []entity.DropdownOption{}
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Found %d options in dropdown with %s", len(options), ref),
		Content: map[string]any{"options": options},
	}, nil
}

type SelectDropdownOptionAction struct {
	d *Deps
}

func NewSelectDropdownOptionAction(d *Deps) *SelectDropdownOptionAction {
	return &SelectDropdownOptionAction{d: d}
}

func (a *SelectDropdownOptionAction) Name() entity.ActionName {
	return entity.ActionSelectDropdownOption
}
func (a *SelectDropdownOptionAction) Description() string { return "Selects a dropdown option by text" }
func (a *SelectDropdownOptionAction) Parameters() map[string]interface{} {
	return object(targetProps(map[string]interface{}{
		"text": prop("string", "Visible text or value of the option"),
	}), "text")
}

func (a *SelectDropdownOptionAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Index      *int   `json:"index"`
		Selector   string `json:"selector"`
		Text       string `json:"text"`
		OptionText string `json:"option_text"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	text := firstNonEmpty(input.Text, input.OptionText)
	if text == "" {
		return nil, fmt.Errorf("text is required: %w", entity.ErrInvalidArguments)
	}
	ref, err := targetRef(input.Index, input.Selector)
	if err != nil {
		return nil, err
	}
	t, ec, err := a.d.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	_, err = a.d.Engine.Attempt(ctx, t, func(ctx context.Context, loc dom.Locator) error {
		if loc.ByPoint() {
			var ok bool
			if err := ec.Eval(ctx, selectAtScript, &ok, loc.Point.X, loc.Point.Y, text); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("option %q: %w", text, entity.ErrElementNotFound)
			}
			return nil
		}
		el, err := ec.Query(ctx, loc.Selector)
		if err != nil {
			return err
		}
		return el.SelectOption(ctx, text)
	})
	if err != nil {
		return nil, entity.Upstream("select option in "+ref.String(), err)
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Selected option '%s' in dropdown with %s", text, ref)}, nil
}
