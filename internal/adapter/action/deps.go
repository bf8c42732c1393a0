// Package action implements the automation actions registered with the
// dispatcher. Each action decodes its JSON arguments, acts on the current
// session and reports a message plus optional content.
package action

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/usecase/dom"
	"browser-automation/internal/usecase/intervention"
	"browser-automation/internal/usecase/session"
)

// TextExtractor turns page markup into readable text.
type TextExtractor interface {
	Text(rawHTML string) string
}

type Timeouts struct {
	History time.Duration
	Click   time.Duration
	// PDFIdle is the soft network idle wait before printing.
	PDFIdle time.Duration
	// SearchInput bounds the wait for the search box to appear.
	SearchInput time.Duration
	// CookieChecks are the delays before each post-write cookie lookup.
	CookieChecks []time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		History:      30 * time.Second,
		Click:        5 * time.Second,
		PDFIdle:      5 * time.Second,
		SearchInput:  10 * time.Second,
		CookieChecks: []time.Duration{500 * time.Millisecond, time.Second},
	}
}

// Deps are the collaborators shared by every action.
type Deps struct {
	Session       *session.Registry
	Engine        *dom.Engine
	Interventions *intervention.Manager
	Text          TextExtractor
	OCR           output.OCRPort
	Logger        output.LoggerPort
	Timeouts      Timeouts
}

func (d *Deps) page() (output.PagePort, error) {
	return d.Session.CurrentPage()
}

// snapshot captures the current execution context for target resolution.
func (d *Deps) snapshot(ctx context.Context) (*entity.PageSnapshot, output.ExecutionContext, error) {
	ec, err := d.Session.ExecutionContext()
	if err != nil {
		return nil, nil, err
	}
	snap, err := d.Engine.Capture(ctx, ec)
	if err != nil {
		return nil, nil, err
	}
	return snap, ec, nil
}

func decode(arguments string, v any) error {
	if arguments == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return fmt.Errorf("decode arguments: %v: %w", err, entity.ErrInvalidArguments)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

// targetProps are the parameters every element targeting action accepts.
func targetProps(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"index":    prop("integer", "Element index from the latest element listing"),
		"selector": prop("string", "CSS selector, used when no index is given"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// firstOf returns the first non-nil pointer's value, or def.
func firstOf[T any](def T, values ...*T) T {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return def
}

const pollInterval = 100 * time.Millisecond

// waitFor polls ec until selector matches or ctx is done.
func waitFor(ctx context.Context, ec output.ExecutionContext, selector string) (output.ElementPort, error) {
	for {
		el, err := ec.Query(ctx, selector)
		if err == nil {
			return el, nil
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return nil, fmt.Errorf("selector %q: %w", selector, entity.ErrElementNotFound)
		}
	}
}
