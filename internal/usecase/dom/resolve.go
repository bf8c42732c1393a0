package dom

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
)

type ReferenceKind int

const (
	RefIndex ReferenceKind = iota
	RefSelector
	RefCoordinates
)

// Reference is what a caller points at: a snapshot index, a selector or a
// viewport position.
type Reference struct {
	Kind     ReferenceKind
	Index    int
	Selector string
	Point    geometry.Point
}

func ByIndex(i int) Reference {
	return Reference{Kind: RefIndex, Index: i}
}

func BySelector(s string) Reference {
	return Reference{Kind: RefSelector, Selector: s}
}

func ByCoordinates(x, y float64) Reference {
	return Reference{Kind: RefCoordinates, Point: geometry.Point{X: x, Y: y}}
}

// ParseReference treats an integer string as an index and anything else as
// a selector.
func ParseReference(s string) Reference {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return ByIndex(i)
	}
	return BySelector(s)
}

func (r Reference) String() string {
	switch r.Kind {
	case RefIndex:
		return fmt.Sprintf("index %d", r.Index)
	case RefSelector:
		return fmt.Sprintf("selector %q", r.Selector)
	default:
		return fmt.Sprintf("coordinates (%g, %g)", r.Point.X, r.Point.Y)
	}
}

// Target is a resolved reference. Fallback is set only when Primary is a
// selector and the element center is known.
type Target struct {
	Ref       Reference
	Element   *entity.ElementNode
	Primary   Locator
	Fallback  *Locator
	TextEntry bool
}

// Resolve turns ref into a target. Index references are looked up in snap,
// selector references are queried live in ec.
func (e *Engine) Resolve(ctx context.Context, snap *entity.PageSnapshot, ec output.ExecutionContext, ref Reference) (*Target, error) {
	switch ref.Kind {
	case RefCoordinates:
		return &Target{Ref: ref, Primary: Locator{Strategy: "coordinates", Point: ref.Point}}, nil

	case RefIndex:
		el, ok := snap.Element(ref.Index)
		if !ok {
			return nil, fmt.Errorf("element with index %d: %w", ref.Index, entity.ErrElementNotFound)
		}
		if el.PageCoordinates == nil || el.PageCoordinates.Empty() {
			return nil, fmt.Errorf("element with index %d has no geometry: %w", ref.Index, entity.ErrElementNotFound)
		}
		return e.plan(ref, el), nil

	case RefSelector:
		if strings.TrimSpace(ref.Selector) == "" {
			return nil, fmt.Errorf("empty selector: %w", entity.ErrInvalidArguments)
		}
		handle, err := ec.Query(ctx, ref.Selector)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", ref.Selector, entity.ErrElementNotFound)
		}
		el := &entity.ElementNode{IsVisible: true, IsInteractive: true, Attributes: map[string]string{}}
		if tag, attrs, err := handle.Describe(ctx); err == nil {
			el.TagName = tag
			if attrs != nil {
				el.Attributes = attrs
			}
		}
		if box, err := handle.Box(ctx); err == nil && !box.Empty() {
			el.ViewportCoordinates = &box
		}
		t := e.plan(ref, el)
		if t.Primary == (Locator{}) {
			// no id, name or geometry: the caller's selector is all we have
			t.Primary = Locator{Strategy: "selector", Selector: ref.Selector}
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown reference kind %d: %w", ref.Kind, entity.ErrInvalidArguments)
}

func (e *Engine) plan(ref Reference, el *entity.ElementNode) *Target {
	t := &Target{Ref: ref, Element: el, TextEntry: el.IsTextEntry()}
	for _, s := range e.strategies {
		if loc, ok := s.Locate(el); ok {
			t.Primary = loc
			break
		}
	}
	if !t.Primary.ByPoint() {
		if p, ok := ClickPoint(el); ok {
			t.Fallback = &Locator{Strategy: "coordinates", Point: p}
		}
	}
	return t
}

// Attempt runs op with the primary locator. A failed selector attempt is
// retried once at the fallback point; if that fails too the primary error is
// returned. The locator that succeeded is returned.
func (e *Engine) Attempt(ctx context.Context, t *Target, op func(context.Context, Locator) error) (Locator, error) {
	err := op(ctx, t.Primary)
	if err == nil {
		return t.Primary, nil
	}
	if t.Fallback == nil || t.Primary.ByPoint() {
		return t.Primary, err
	}

	e.logger.Warn("Selector attempt failed, retrying at coordinates",
		"target", t.Ref.String(), "selector", t.Primary.Selector, "error", err)
	if ferr := op(ctx, *t.Fallback); ferr != nil {
		e.logger.Warn("Coordinate fallback failed", "target", t.Ref.String(), "error", ferr)
		return t.Primary, err
	}
	return *t.Fallback, nil
}

// Point resolves ref to the point pointer input should land on.
func (e *Engine) Point(ctx context.Context, snap *entity.PageSnapshot, ec output.ExecutionContext, ref Reference) (geometry.Point, error) {
	if ref.Kind == RefCoordinates {
		return ref.Point, nil
	}
	if ref.Kind == RefSelector {
		handle, err := ec.Query(ctx, ref.Selector)
		if err != nil {
			return geometry.Point{}, fmt.Errorf("selector %q: %w", ref.Selector, entity.ErrElementNotFound)
		}
		box, err := handle.Box(ctx)
		if err != nil || box.Empty() {
			return geometry.Point{}, fmt.Errorf("selector %q has no geometry: %w", ref.Selector, entity.ErrElementNotFound)
		}
		return box.Center(), nil
	}
	t, err := e.Resolve(ctx, snap, ec, ref)
	if err != nil {
		return geometry.Point{}, err
	}
	p, _ := ClickPoint(t.Element)
	return p, nil
}
