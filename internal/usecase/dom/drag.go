package dom

import (
	"context"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/geometry"
)

const (
	DefaultDragSteps = 10
	DefaultDragDelay = 5 * time.Millisecond
)

// DragPlan moves the pointer from From to To in Steps evenly spaced moves
// with Delay between them. Some sites only react to a drag that produces
// intermediate move events.
type DragPlan struct {
	From  geometry.Point
	To    geometry.Point
	Steps int
	Delay time.Duration
}

// Path is the list of positions visited after the pointer is pressed at From.
func (p DragPlan) Path() []geometry.Point {
	steps := p.Steps
	if steps <= 0 {
		steps = DefaultDragSteps
	}
	return geometry.Interpolate(p.From, p.To, steps)
}

// Drag performs plan on page. The button is released even when a move fails.
func Drag(ctx context.Context, page output.PagePort, plan DragPlan) (err error) {
	if err := page.MouseMove(ctx, plan.From); err != nil {
		return err
	}
	if err := page.MouseDown(ctx); err != nil {
		return err
	}
	defer func() {
		if upErr := page.MouseUp(ctx); err == nil {
			err = upErr
		}
	}()

	for _, pt := range plan.Path() {
		if err := page.MouseMove(ctx, pt); err != nil {
			return err
		}
		if plan.Delay > 0 {
			select {
			case <-time.After(plan.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
