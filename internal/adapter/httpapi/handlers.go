package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"browser-automation/internal/application/port/input"
	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"

	"github.com/go-chi/chi/v5"
)

const (
	maxBodyBytes     = 10 << 20
	cdpStatusTimeout = 5 * time.Second
)

type Handlers struct {
	exec    input.ActionExecutor
	browser Versioner
	logger  output.LoggerPort
}

func NewHandlers(exec input.ActionExecutor, browser Versioner, logger output.LoggerPort) *Handlers {
	return &Handlers{exec: exec, browser: browser, logger: logger}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/cdp-status", h.HandleCDPStatus)

	r.Route("/automation", func(r chi.Router) {
		r.Get("/actions", h.HandleListActions)
		r.Post("/{action}", h.HandleAction)
	})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type cdpStatus struct {
	Connected bool   `json:"connected"`
	Browser   string `json:"browser,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handlers) HandleCDPStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), cdpStatusTimeout)
	defer cancel()

	version, err := h.browser.Version(ctx)
	if err != nil {
		h.logger.Warn("CDP status check failed", "error", err)
		h.respond(w, http.StatusServiceUnavailable, cdpStatus{Error: err.Error()})
		return
	}
	h.respond(w, http.StatusOK, cdpStatus{Connected: true, Browser: version})
}

func (h *Handlers) HandleListActions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.exec.Definitions())
}

// HandleAction runs the named action with the request body as its
// parameters. The result envelope carries success or failure, so the status
// is 200 unless the body cannot be read.
func (h *Handlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	name := entity.ActionName(chi.URLParam(r, "action"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}
	if len(body) > maxBodyBytes {
		h.respond(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return
	}

	result := h.exec.Execute(r.Context(), name.Canonical(), string(body))
	h.respond(w, http.StatusOK, result)
}

func (h *Handlers) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
