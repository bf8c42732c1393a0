package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"browser-automation/internal/domain/entity"
	"browser-automation/internal/usecase/intervention"
)

// notFound keeps the lookup failure message of intervention actions uniform.
func notFound(err error) (*entity.ActionOutput, error) {
	switch {
	case errors.Is(err, entity.ErrInterventionNotFound):
		return &entity.ActionOutput{Message: "Intervention not found"}, err
	case errors.Is(err, entity.ErrNoActiveIntervention):
		return &entity.ActionOutput{Message: "No active interventions found"}, err
	}
	return nil, err
}

type RequestInterventionAction struct {
	d *Deps
}

func NewRequestInterventionAction(d *Deps) *RequestInterventionAction {
	return &RequestInterventionAction{d: d}
}

func (a *RequestInterventionAction) Name() entity.ActionName { return entity.ActionRequestIntervention }
func (a *RequestInterventionAction) Description() string {
	return "Pauses for a human operator and shows a notice on the page"
}
func (a *RequestInterventionAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"intervention_type": prop("string", "captcha, login_required, security_check, anti_bot_protection, two_factor_auth, cookies_consent, age_verification, complex_data_entry or custom"),
		"message":           prop("string", "What the operator should do"),
		"instructions":      prop("string", "Step by step instructions"),
		"timeout_seconds":   prop("integer", "Seconds before the request times out, default 300"),
		"context":           prop("object", "Free-form details stored with the request"),
		"take_screenshot":   prop("boolean", "Save a screenshot with the request, default true"),
		"auto_detect":       prop("boolean", "Marks the request as raised by automatic detection"),
	}, "intervention_type", "message")
}

func (a *RequestInterventionAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Type           entity.InterventionType `json:"intervention_type"`
		Message        string                  `json:"message"`
		Instructions   string                  `json:"instructions"`
		TimeoutSeconds *int                    `json:"timeout_seconds"`
		Context        map[string]any          `json:"context"`
		TakeScreenshot *bool                   `json:"take_screenshot"`
		AutoDetect     bool                    `json:"auto_detect"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.Message == "" {
		return nil, fmt.Errorf("message is required: %w", entity.ErrInvalidArguments)
	}
	if input.TimeoutSeconds != nil && *input.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("timeout_seconds must not be negative: %w", entity.ErrInvalidArguments)
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}

	res, err := a.d.Interventions.Request(ctx, page, intervention.RequestParams{
		Type:           input.Type,
		Message:        input.Message,
		Instructions:   input.Instructions,
		TimeoutSeconds: firstOf(-1, input.TimeoutSeconds),
		Context:        input.Context,
		TakeScreenshot: firstOf(true, input.TakeScreenshot),
		AutoDetected:   input.AutoDetect,
	})
	if err != nil {
		return &entity.ActionOutput{Message: "Failed to request intervention"}, err
	}
	req := res.Request
	content := map[string]any{
		"intervention_id": req.ID,
		"status":          req.Status,
		"timeout_seconds": req.TimeoutSeconds,
		"url":             req.URL,
	}
	if res.ScreenshotBase64 != "" {
		content["screenshot_base64"] = res.ScreenshotBase64
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Human intervention requested: %s", req.Type),
		Content: content,
	}, nil
}

type CompleteInterventionAction struct {
	d *Deps
}

func NewCompleteInterventionAction(d *Deps) *CompleteInterventionAction {
	return &CompleteInterventionAction{d: d}
}

func (a *CompleteInterventionAction) Name() entity.ActionName {
	return entity.ActionCompleteIntervention
}
func (a *CompleteInterventionAction) Description() string { return "Marks an intervention as done" }
func (a *CompleteInterventionAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"intervention_id": prop("string", "Id returned by request_intervention"),
		"user_message":    prop("string", "Note from the operator"),
		"success":         prop("boolean", "Whether the operator succeeded, default true"),
	}, "intervention_id")
}

func (a *CompleteInterventionAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		ID          string `json:"intervention_id"`
		UserMessage string `json:"user_message"`
		Success     *bool  `json:"success"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.ID == "" {
		return nil, fmt.Errorf("intervention_id is required: %w", entity.ErrInvalidArguments)
	}
	page, _ := a.d.page()
	req, err := a.d.Interventions.Complete(ctx, page, input.ID, firstOf(true, input.Success), input.UserMessage)
	if err != nil {
		return notFound(err)
	}
	return &entity.ActionOutput{
		Message: "Intervention completed successfully",
		Content: map[string]any{
			"intervention_id": req.ID,
			"status":          req.Status,
			"user_message":    input.UserMessage,
		},
	}, nil
}

type CancelInterventionAction struct {
	d *Deps
}

func NewCancelInterventionAction(d *Deps) *CancelInterventionAction {
	return &CancelInterventionAction{d: d}
}

func (a *CancelInterventionAction) Name() entity.ActionName { return entity.ActionCancelIntervention }
func (a *CancelInterventionAction) Description() string     { return "Withdraws an intervention request" }
func (a *CancelInterventionAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"intervention_id": prop("string", "Id returned by request_intervention"),
		"reason":          prop("string", "Why the request is withdrawn"),
	}, "intervention_id")
}

func (a *CancelInterventionAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		ID     string `json:"intervention_id"`
		Reason string `json:"reason"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.ID == "" {
		return nil, fmt.Errorf("intervention_id is required: %w", entity.ErrInvalidArguments)
	}
	page, _ := a.d.page()
	req, err := a.d.Interventions.Cancel(ctx, page, input.ID, input.Reason)
	if err != nil {
		return notFound(err)
	}
	return &entity.ActionOutput{
		Message: "Intervention cancelled",
		Content: map[string]any{
			"intervention_id": req.ID,
			"status":          req.Status,
			"reason":          input.Reason,
		},
	}, nil
}

type InterventionStatusAction struct {
	d *Deps
}

func NewInterventionStatusAction(d *Deps) *InterventionStatusAction {
	return &InterventionStatusAction{d: d}
}

func (a *InterventionStatusAction) Name() entity.ActionName { return entity.ActionInterventionStatus }
func (a *InterventionStatusAction) Description() string {
	return "Reads an intervention, or the latest one when no id is given"
}
func (a *InterventionStatusAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"intervention_id": prop("string", "Id returned by request_intervention"),
	})
}

func (a *InterventionStatusAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		ID string `json:"intervention_id"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	page, _ := a.d.page()
	report, err := a.d.Interventions.Status(ctx, page, input.ID)
	if err != nil {
		return notFound(err)
	}
	return &entity.ActionOutput{
		Message: "Intervention status retrieved",
		Content: StatusContent(report),
	}, nil
}

// StatusContent renders a status report with RFC 3339 timestamps and the
// remaining time in seconds, null once the request left pending.
func StatusContent(report *intervention.StatusReport) map[string]any {
	req := report.Request
	content := map[string]any{
		"intervention_id":   req.ID,
		"intervention_type": req.Type,
		"status":            req.Status,
		"message":           req.Message,
		"url":               req.URL,
		"created_at":        req.CreatedAt.Format(time.RFC3339),
		"completed_at":      nil,
		"time_remaining":    nil,
		"user_message":      req.UserMessage,
	}
	if req.CompletedAt != nil {
		content["completed_at"] = req.CompletedAt.Format(time.RFC3339)
	}
	if report.TimeRemaining != nil {
		content["time_remaining"] = report.TimeRemaining.Seconds()
	}
	return content
}

type AutoDetectAction struct {
	d *Deps
}

func NewAutoDetectAction(d *Deps) *AutoDetectAction {
	return &AutoDetectAction{d: d}
}

func (a *AutoDetectAction) Name() entity.ActionName { return entity.ActionAutoDetect }
func (a *AutoDetectAction) Description() string {
	return "Checks the page for captchas, logins, security checks, bot walls and cookie banners"
}
func (a *AutoDetectAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"check_captcha":  prop("boolean", "Default true"),
		"check_login":    prop("boolean", "Default true"),
		"check_security": prop("boolean", "Default true"),
		"check_anti_bot": prop("boolean", "Default true"),
		"check_cookies":  prop("boolean", "Default true"),
	})
}

func (a *AutoDetectAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	checks := entity.AllChecks()
	if err := decode(args, &checks); err != nil {
		return nil, err
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	report, err := a.d.Interventions.Detect(ctx, page, checks)
	if err != nil {
		return &entity.ActionOutput{Message: "Failed to auto-detect intervention needs"}, err
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Auto-detection completed. Intervention needed: %t", report.InterventionNeeded),
		Content: report,
	}, nil
}
