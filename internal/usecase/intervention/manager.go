// Package intervention coordinates pauses handed over to a human operator:
// pending requests, their lazy timeout and detection of pages that need one.
package intervention

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"

	"github.com/google/uuid"
)

type Config struct {
	// ScreenshotDir receives intervention_<id>.png captures. Empty disables saving.
	ScreenshotDir string
	// CallbackURL is the base URL the notice buttons post to.
	CallbackURL           string
	DefaultTimeoutSeconds int
	Confidence            Confidence
}

func DefaultConfig() Config {
	return Config{
		ScreenshotDir:         "screenshots",
		DefaultTimeoutSeconds: 300,
		Confidence:            DefaultConfidence(),
	}
}

// Manager owns the active request registry. A request leaves the registry as
// soon as it reaches a terminal status. Timeouts are only evaluated when the
// status is read, so a request may stay pending past its deadline until the
// next Status call.
type Manager struct {
	mu       sync.Mutex
	active   map[string]*entity.InterventionRequest
	cfg      Config
	operator output.OperatorPort
	logger   output.LoggerPort

	now   func() time.Time
	newID func() string
}

func NewManager(cfg Config, operator output.OperatorPort, logger output.LoggerPort) *Manager {
	if cfg.DefaultTimeoutSeconds <= 0 {
		cfg.DefaultTimeoutSeconds = DefaultConfig().DefaultTimeoutSeconds
	}
	return &Manager{
		active:   make(map[string]*entity.InterventionRequest),
		cfg:      cfg,
		operator: operator,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

type RequestParams struct {
	Type         entity.InterventionType
	Message      string
	Instructions string
	// TimeoutSeconds below zero selects the configured default.
	TimeoutSeconds int
	Context        map[string]any
	TakeScreenshot bool
	AutoDetected   bool
}

type Requested struct {
	Request          entity.InterventionRequest
	ScreenshotBase64 string
}

// Request registers a pending intervention and renders the notice on page.
// It returns immediately; callers poll Status.
func (m *Manager) Request(ctx context.Context, page output.PagePort, p RequestParams) (*Requested, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("intervention type %q: %w", p.Type, entity.ErrInvalidArguments)
	}
	timeout := p.TimeoutSeconds
	if timeout < 0 {
		timeout = m.cfg.DefaultTimeoutSeconds
	}

	req := &entity.InterventionRequest{
		ID:             m.newID(),
		Type:           p.Type,
		Message:        p.Message,
		Instructions:   p.Instructions,
		Context:        p.Context,
		TimeoutSeconds: timeout,
		Status:         entity.InterventionPending,
		CreatedAt:      m.now(),
		AutoDetected:   p.AutoDetected,
	}
	if req.Context == nil {
		req.Context = map[string]any{}
	}

	out := &Requested{}
	if page != nil {
		if info, err := page.Info(ctx); err == nil {
			req.URL = info.URL
		}
		if p.TakeScreenshot {
			path, data := m.capture(ctx, page, req.ID)
			req.ScreenshotPath = path
			if len(data) > 0 {
				out.ScreenshotBase64 = base64.StdEncoding.EncodeToString(data)
			}
		}
	}

	m.mu.Lock()
	m.active[req.ID] = req
	m.mu.Unlock()

	m.showNotice(ctx, page, req)
	if m.operator != nil {
		m.operator.AnnounceIntervention(ctx, req)
	}
	m.logger.Info("Human intervention requested",
		"intervention_id", req.ID, "type", string(req.Type), "url", req.URL, "timeout_seconds", timeout)

	out.Request = *req
	return out, nil
}

// capture saves a PNG of the page. Failures leave the screenshot absent.
func (m *Manager) capture(ctx context.Context, page output.PagePort, id string) (string, []byte) {
	shot, err := page.Screenshot(ctx, entity.ScreenshotOptions{Format: entity.ScreenshotPNG})
	if err != nil {
		m.logger.Warn("Intervention screenshot failed", "intervention_id", id, "error", err)
		return "", nil
	}
	if m.cfg.ScreenshotDir == "" {
		return "", shot.Data
	}
	if err := os.MkdirAll(m.cfg.ScreenshotDir, 0o755); err != nil {
		m.logger.Warn("Creating screenshot dir failed", "dir", m.cfg.ScreenshotDir, "error", err)
		return "", shot.Data
	}
	path := filepath.Join(m.cfg.ScreenshotDir, fmt.Sprintf("intervention_%s.png", id))
	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		m.logger.Warn("Saving intervention screenshot failed", "path", path, "error", err)
		return "", shot.Data
	}
	return path, shot.Data
}

// Complete resolves a request as completed or failed.
func (m *Manager) Complete(ctx context.Context, page output.PagePort, id string, success bool, userMessage string) (*entity.InterventionRequest, error) {
	status := entity.InterventionFailed
	if success {
		status = entity.InterventionCompleted
	}
	return m.finish(ctx, page, id, status, userMessage)
}

// Cancel resolves a request as cancelled.
func (m *Manager) Cancel(ctx context.Context, page output.PagePort, id, reason string) (*entity.InterventionRequest, error) {
	return m.finish(ctx, page, id, entity.InterventionCancelled, reason)
}

func (m *Manager) finish(ctx context.Context, page output.PagePort, id string, status entity.InterventionStatus, userMessage string) (*entity.InterventionRequest, error) {
	m.mu.Lock()
	req, ok := m.active[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w with ID: %s", entity.ErrInterventionNotFound, id)
	}
	m.resolve(req, status, userMessage)
	m.mu.Unlock()

	m.settled(ctx, page, req)
	out := *req
	return &out, nil
}

// resolve moves req to a terminal status and evicts it. Caller holds mu.
func (m *Manager) resolve(req *entity.InterventionRequest, status entity.InterventionStatus, userMessage string) {
	now := m.now()
	req.Status = status
	req.CompletedAt = &now
	if userMessage != "" {
		req.UserMessage = userMessage
	}
	delete(m.active, req.ID)
}

func (m *Manager) settled(ctx context.Context, page output.PagePort, req *entity.InterventionRequest) {
	m.hideNotice(ctx, page)
	if m.operator != nil {
		m.operator.AnnounceResolution(ctx, req)
	}
	m.logger.Info("Intervention resolved", "intervention_id", req.ID, "status", string(req.Status))
}

type StatusReport struct {
	Request entity.InterventionRequest
	// TimeRemaining is set only while the request is pending.
	TimeRemaining *time.Duration
}

// Status reads a request, or the most recent active one when id is empty.
// A pending request whose deadline has passed is moved to timeout here.
func (m *Manager) Status(ctx context.Context, page output.PagePort, id string) (*StatusReport, error) {
	m.mu.Lock()
	var req *entity.InterventionRequest
	if id == "" {
		req = m.latest()
		if req == nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: no intervention ID provided", entity.ErrNoActiveIntervention)
		}
	} else {
		var ok bool
		if req, ok = m.active[id]; !ok {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w with ID: %s", entity.ErrInterventionNotFound, id)
		}
	}

	now := m.now()
	timedOut := req.Status == entity.InterventionPending && !now.Before(req.Deadline())
	if timedOut {
		m.resolve(req, entity.InterventionTimeout, "")
	}
	report := &StatusReport{Request: *req}
	if req.Status == entity.InterventionPending {
		left := req.Remaining(now)
		report.TimeRemaining = &left
	}
	m.mu.Unlock()

	if timedOut {
		m.logger.Warn("Intervention timed out", "intervention_id", req.ID, "timeout_seconds", req.TimeoutSeconds)
		m.settled(ctx, page, req)
	}
	return report, nil
}

func (m *Manager) latest() *entity.InterventionRequest {
	var latest *entity.InterventionRequest
	for _, r := range m.active {
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest
}

// Active lists the registry ordered by creation time.
func (m *Manager) Active() []entity.InterventionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.InterventionRequest, 0, len(m.active))
	for _, r := range m.active {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type pageText struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

const documentScript = `() => ({
	html: document.documentElement ? document.documentElement.outerHTML : '',
	text: document.body ? document.body.innerText : '',
})`

// Detect inspects the top-level document of page. The registry is untouched.
func (m *Manager) Detect(ctx context.Context, page output.PagePort, checks entity.DetectionChecks) (*entity.DetectionReport, error) {
	var raw pageText
	if err := page.Eval(ctx, documentScript, &raw); err != nil {
		return nil, entity.Upstream("read page document", err)
	}
	doc := entity.PageDocument{HTML: raw.HTML, Text: raw.Text}
	if info, err := page.Info(ctx); err == nil {
		doc.URL, doc.Title = info.URL, info.Title
	}

	report, err := Detect(doc, checks, m.cfg.Confidence)
	if err != nil {
		return nil, err
	}
	m.logger.Info("Intervention detection finished",
		"needed", report.InterventionNeeded, "types", report.DetectedTypes)
	return report, nil
}
