package action

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"browser-automation/internal/domain/entity"
)

type SwitchToFrameAction struct {
	d *Deps
}

func NewSwitchToFrameAction(d *Deps) *SwitchToFrameAction {
	return &SwitchToFrameAction{d: d}
}

func (a *SwitchToFrameAction) Name() entity.ActionName { return entity.ActionSwitchToFrame }
func (a *SwitchToFrameAction) Description() string     { return "Runs later actions inside a child frame" }
func (a *SwitchToFrameAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"frame": map[string]interface{}{
			"type":        []string{"integer", "string"},
			"description": "Frame index (0 is the main frame), frame name, or the name or id of the iframe element",
		},
	}, "frame")
}

func (a *SwitchToFrameAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Frame         json.RawMessage `json:"frame"`
		FrameSelector json.RawMessage `json:"frame_selector"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	raw := input.Frame
	if len(raw) == 0 {
		raw = input.FrameSelector
	}
	ref, err := frameRef(raw)
	if err != nil {
		return nil, err
	}
	if err := a.d.Session.SwitchFrame(ctx, ref); err != nil {
		return nil, err
	}
	return &entity.ActionOutput{Message: fmt.Sprintf("Switched to frame %s", ref)}, nil
}

// frameRef accepts a JSON number or string.
func frameRef(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("frame is required: %w", entity.ErrInvalidArguments)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("frame must be a number or a string: %w", entity.ErrInvalidArguments)
}

type SwitchToMainFrameAction struct {
	d *Deps
}

func NewSwitchToMainFrameAction(d *Deps) *SwitchToMainFrameAction {
	return &SwitchToMainFrameAction{d: d}
}

func (a *SwitchToMainFrameAction) Name() entity.ActionName { return entity.ActionSwitchToMainFrame }
func (a *SwitchToMainFrameAction) Description() string     { return "Returns to the top-level document" }
func (a *SwitchToMainFrameAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (a *SwitchToMainFrameAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	a.d.Session.ResetFrame()
	return &entity.ActionOutput{Message: "Switched to main frame"}, nil
}
