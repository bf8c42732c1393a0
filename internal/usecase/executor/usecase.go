// Package executor dispatches named actions and wraps every outcome in a
// result envelope carrying fresh page state.
package executor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"browser-automation/internal/application/port/input"
	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
)

var _ input.ActionExecutor = (*UseCase)(nil)

// Session exposes the active tab and execution context.
type Session interface {
	CurrentPage() (output.PagePort, error)
	ExecutionContext() (output.ExecutionContext, error)
}

type Snapshotter interface {
	Capture(ctx context.Context, ec output.ExecutionContext) (*entity.PageSnapshot, error)
}

type Config struct {
	// SettleDelay lets the page react before state is captured.
	SettleDelay time.Duration
	OCR         bool
}

// UseCase runs one action at a time. Calls are serialized because the
// session and intervention registries assume a single driver.
type UseCase struct {
	mu        sync.Mutex
	actions   output.ActionRegistry
	session   Session
	snapshots Snapshotter
	ocr       output.OCRPort
	logger    output.LoggerPort
	cfg       Config
}

func New(
	actions output.ActionRegistry,
	session Session,
	snapshots Snapshotter,
	ocr output.OCRPort,
	logger output.LoggerPort,
	cfg Config,
) *UseCase {
	return &UseCase{
		actions:   actions,
		session:   session,
		snapshots: snapshots,
		ocr:       ocr,
		logger:    logger,
		cfg:       cfg,
	}
}

func (uc *UseCase) Definitions() []entity.ActionDefinition {
	return uc.actions.Definitions()
}

// Execute never fails: errors and panics become an unsuccessful result, and
// the page state is captured whether or not the action worked.
func (uc *UseCase) Execute(ctx context.Context, name entity.ActionName, arguments string) *entity.ActionResult {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	log := uc.logger.WithField("action", name.String())
	start := time.Now()

	out, err := uc.run(ctx, name, arguments)

	result := &entity.ActionResult{Success: err == nil}
	if out != nil {
		result.Message = out.Message
		result.Content = out.Content
	}
	if err != nil {
		result.Error = err.Error()
		result.ErrorKind = entity.ErrorKind(err)
		if result.Message == "" {
			result.Message = fmt.Sprintf("%s failed", name.Canonical())
		}
		log.Warn("Action failed", "error", err, "kind", result.ErrorKind)
	}

	state := uc.CaptureState(ctx)
	if out != nil && out.Screenshot != "" {
		state.ScreenshotBase64 = out.Screenshot
	}
	result.Apply(state)

	log.Info("Action executed",
		"success", result.Success,
		"url", result.URL,
		"elements", result.ElementCount,
		"duration_ms", time.Since(start).Milliseconds())
	return result
}

func (uc *UseCase) run(ctx context.Context, name entity.ActionName, arguments string) (out *entity.ActionOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Action panicked", "action", name.String(), "panic", r)
			out, err = nil, entity.Upstream(string(name), fmt.Errorf("panic: %v", r))
		}
	}()

	action, ok := uc.actions.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown action %q: %w", name, entity.ErrInvalidArguments)
	}
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}

	uc.logger.Debug("Executing action", "action", name.String(), "args", arguments)
	return action.Execute(ctx, arguments)
}

// CaptureState builds the page view attached to every result. Each part
// degrades to its zero value on failure.
func (uc *UseCase) CaptureState(ctx context.Context) entity.PageState {
	if uc.cfg.SettleDelay > 0 {
		select {
		case <-time.After(uc.cfg.SettleDelay):
		case <-ctx.Done():
		}
	}

	snap := entity.EmptySnapshot()
	if ec, err := uc.session.ExecutionContext(); err == nil {
		if s, err := uc.snapshots.Capture(ctx, ec); err != nil {
			uc.logger.Warn("State capture failed, using empty snapshot", "error", err)
		} else {
			snap = s
		}
	}

	state := entity.PageState{
		URL:                 snap.URL,
		Title:               snap.Title,
		Elements:            snap.FormatElements(entity.ListingAttributes),
		PixelsAbove:         snap.ScrollOffsetAbove,
		PixelsBelow:         snap.ScrollOffsetBelow,
		ElementCount:        snap.Count(),
		InteractiveElements: snap.Summarize(entity.SummaryAttributes),
		ViewportWidth:       int(snap.Viewport.Width),
		ViewportHeight:      int(snap.Viewport.Height),
	}

	page, err := uc.session.CurrentPage()
	if err != nil {
		return state
	}
	if info, err := page.Info(ctx); err == nil {
		state.URL, state.Title = info.URL, info.Title
	}

	shot, err := page.Screenshot(ctx, entity.ViewportScreenshot())
	if err != nil {
		uc.logger.Warn("Viewport screenshot failed", "error", err)
		return state
	}
	state.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot.Data)

	if uc.cfg.OCR && uc.ocr != nil {
		text, err := uc.ocr.ExtractText(ctx, shot.Data)
		if err != nil {
			uc.logger.Warn("OCR failed", "error", err)
		} else {
			state.OCRText = text
		}
	}
	return state
}
