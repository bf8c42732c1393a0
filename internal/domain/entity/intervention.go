package entity

import "time"

type InterventionType string

const (
	InterventionCaptcha          InterventionType = "captcha"
	InterventionLoginRequired    InterventionType = "login_required"
	InterventionSecurityCheck    InterventionType = "security_check"
	InterventionAntiBot          InterventionType = "anti_bot_protection"
	InterventionTwoFactorAuth    InterventionType = "two_factor_auth"
	InterventionCookiesConsent   InterventionType = "cookies_consent"
	InterventionAgeVerification  InterventionType = "age_verification"
	InterventionComplexDataEntry InterventionType = "complex_data_entry"
	InterventionCustom           InterventionType = "custom"
)

var interventionTypes = map[InterventionType]bool{
	InterventionCaptcha:          true,
	InterventionLoginRequired:    true,
	InterventionSecurityCheck:    true,
	InterventionAntiBot:          true,
	InterventionTwoFactorAuth:    true,
	InterventionCookiesConsent:   true,
	InterventionAgeVerification:  true,
	InterventionComplexDataEntry: true,
	InterventionCustom:           true,
}

func (t InterventionType) Valid() bool {
	return interventionTypes[t]
}

type InterventionStatus string

const (
	InterventionPending    InterventionStatus = "pending"
	InterventionInProgress InterventionStatus = "in_progress"
	InterventionCompleted  InterventionStatus = "completed"
	InterventionTimeout    InterventionStatus = "timeout"
	InterventionCancelled  InterventionStatus = "cancelled"
	InterventionFailed     InterventionStatus = "failed"
)

// Terminal statuses have no outgoing transitions.
func (s InterventionStatus) Terminal() bool {
	switch s {
	case InterventionCompleted, InterventionTimeout, InterventionCancelled, InterventionFailed:
		return true
	}
	return false
}

// InterventionRequest is a pause point handed over to a human operator.
type InterventionRequest struct {
	ID             string             `json:"id"`
	Type           InterventionType   `json:"intervention_type"`
	Message        string             `json:"message"`
	Instructions   string             `json:"instructions,omitempty"`
	URL            string             `json:"url"`
	ScreenshotPath string             `json:"screenshot_path,omitempty"`
	Context        map[string]any     `json:"context,omitempty"`
	TimeoutSeconds int                `json:"timeout_seconds"`
	Status         InterventionStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	UserMessage    string             `json:"user_message,omitempty"`
	AutoDetected   bool               `json:"auto_detected"`
}

// Deadline is the instant after which a pending request counts as timed out.
func (r *InterventionRequest) Deadline() time.Time {
	return r.CreatedAt.Add(time.Duration(r.TimeoutSeconds) * time.Second)
}

// Remaining is max(0, timeout - elapsed) at now.
func (r *InterventionRequest) Remaining(now time.Time) time.Duration {
	left := r.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// DetectionChecks selects which detectors run.
type DetectionChecks struct {
	Captcha  bool `json:"check_captcha"`
	Login    bool `json:"check_login"`
	Security bool `json:"check_security"`
	AntiBot  bool `json:"check_anti_bot"`
	Cookies  bool `json:"check_cookies"`
}

// AllChecks enables every detector.
func AllChecks() DetectionChecks {
	return DetectionChecks{Captcha: true, Login: true, Security: true, AntiBot: true, Cookies: true}
}

// PageIndicators are raw signals gathered next to detector verdicts.
type PageIndicators struct {
	URL              string `json:"url"`
	Title            string `json:"title"`
	HasPasswordField bool   `json:"has_password_field"`
	HasCaptchaIframe bool   `json:"has_captcha_iframe"`
	PageTextLength   int    `json:"page_text_length"`
}

// DetectionReport aggregates all positive detector verdicts.
type DetectionReport struct {
	InterventionNeeded bool                         `json:"intervention_needed"`
	DetectedTypes      []InterventionType           `json:"detected_types"`
	Recommendations    []string                     `json:"recommendations"`
	ConfidenceScores   map[InterventionType]float64 `json:"confidence_scores"`
	PageIndicators     PageIndicators               `json:"page_indicators"`
}
