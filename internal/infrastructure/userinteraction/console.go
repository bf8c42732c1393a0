// Package userinteraction tells the human operator, on the terminal, when
// automation is waiting for them.
package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.OperatorPort = (*OperatorConsole)(nil)

type OperatorConsole struct {
	out         io.Writer
	callbackURL string
}

// NewOperatorConsole prints to stdout. callbackURL is shown so the operator
// can resolve a request without the page overlay.
func NewOperatorConsole(callbackURL string) *OperatorConsole {
	return &OperatorConsole{out: os.Stdout, callbackURL: strings.TrimRight(callbackURL, "/")}
}

// WithWriter redirects output, mainly for tests.
func (c *OperatorConsole) WithWriter(w io.Writer) *OperatorConsole {
	c.out = w
	return c
}

func (c *OperatorConsole) AnnounceIntervention(ctx context.Context, req *entity.InterventionRequest) {
	icon, label := typeDisplay(req.Type)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(c.out, "\n━━━ %s HUMAN INTERVENTION REQUIRED: %s ━━━\n", icon, label)

	fmt.Fprintf(c.out, "   %s\n", truncate(req.Message, 300))
	if req.Instructions != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(c.out, "   %s\n", truncate(req.Instructions, 300))
	}
	if req.URL != "" {
		fmt.Fprintf(c.out, "   URL: %s\n", req.URL)
	}
	fmt.Fprintf(c.out, "   ID: %s (times out after %s)\n", req.ID, time.Duration(req.TimeoutSeconds)*time.Second)
	if req.AutoDetected {
		fmt.Fprintln(c.out, "   Detected automatically")
	}

	if c.callbackURL != "" {
		cyan := color.New(color.FgCyan)
		cyan.Fprintf(c.out, "   Complete: POST %s/automation/complete_intervention {\"intervention_id\":%q}\n", c.callbackURL, req.ID)
		cyan.Fprintf(c.out, "   Cancel:   POST %s/automation/cancel_intervention {\"intervention_id\":%q}\n", c.callbackURL, req.ID)
	}
}

func (c *OperatorConsole) AnnounceResolution(ctx context.Context, req *entity.InterventionRequest) {
	var paint *color.Color
	var mark string
	switch req.Status {
	case entity.InterventionCompleted:
		paint, mark = color.New(color.FgGreen), "✓"
	case entity.InterventionCancelled:
		paint, mark = color.New(color.FgYellow), "⊘"
	default:
		paint, mark = color.New(color.FgRed), "✗"
	}

	paint.Fprintf(c.out, "%s Intervention %s: %s\n", mark, req.ID, req.Status)
	if req.UserMessage != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(c.out, "   %s\n", truncate(req.UserMessage, 300))
	}
}

func typeDisplay(t entity.InterventionType) (string, string) {
	displays := map[entity.InterventionType][2]string{
		entity.InterventionCaptcha:          {"🧩", "CAPTCHA"},
		entity.InterventionLoginRequired:    {"🔑", "Login required"},
		entity.InterventionSecurityCheck:    {"🛡️", "Security check"},
		entity.InterventionAntiBot:          {"🤖", "Anti-bot protection"},
		entity.InterventionTwoFactorAuth:    {"📱", "Two-factor authentication"},
		entity.InterventionCookiesConsent:   {"🍪", "Cookie consent"},
		entity.InterventionAgeVerification:  {"🔞", "Age verification"},
		entity.InterventionComplexDataEntry: {"📝", "Data entry"},
		entity.InterventionCustom:           {"✋", "Manual step"},
	}
	if d, ok := displays[t]; ok {
		return d[0], d[1]
	}
	return "✋", string(t)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
