package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"browser-automation/internal/domain/entity"
	"browser-automation/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type call struct {
	name entity.ActionName
	args string
}

type stubExecutor struct {
	mu    sync.Mutex
	calls []call
}

func (s *stubExecutor) Execute(ctx context.Context, name entity.ActionName, arguments string) *entity.ActionResult {
	s.mu.Lock()
	s.calls = append(s.calls, call{name, arguments})
	s.mu.Unlock()
	if name == "missing" {
		return &entity.ActionResult{Success: false, Error: "unknown action", ErrorKind: "InvalidArguments", URL: "about:blank"}
	}
	return &entity.ActionResult{Success: true, Message: "ok " + string(name), URL: "https://shop.example/"}
}

func (s *stubExecutor) Definitions() []entity.ActionDefinition {
	return []entity.ActionDefinition{{Name: entity.ActionNavigateTo, Description: "Navigate"}}
}

type stubBrowser struct {
	version string
	err     error
}

func (b stubBrowser) Version(context.Context) (string, error) { return b.version, b.err }

func newTestServer(exec *stubExecutor, browser Versioner) *Server {
	cfg := DefaultConfig()
	cfg.AccessLogJSON = false
	cfg.LogLevel = "error"
	return NewServer(cfg, exec, browser, logger.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{})

	rec := do(t, s.Router(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestCDPStatus(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{version: "HeadlessChrome/120.0"})

	rec := do(t, s.Router(), http.MethodGet, "/cdp-status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":true,"browser":"HeadlessChrome/120.0"}`, rec.Body.String())
}

func TestCDPStatus_Down(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{err: errors.New("websocket closed")})

	rec := do(t, s.Router(), http.MethodGet, "/cdp-status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"connected":false,"error":"websocket closed"}`, rec.Body.String())
}

func TestAction_PassesBody(t *testing.T) {
	exec := &stubExecutor{}
	s := newTestServer(exec, stubBrowser{})

	rec := do(t, s.Router(), http.MethodPost, "/automation/navigate_to", `{"url":"https://shop.example"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res entity.ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "ok navigate_to", res.Message)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, call{entity.ActionNavigateTo, `{"url":"https://shop.example"}`}, exec.calls[0])
}

func TestAction_Aliases(t *testing.T) {
	tests := map[string]entity.ActionName{
		"open_new_tab":     entity.ActionOpenTab,
		"generate_pdf":     entity.ActionSavePDF,
		"drag_and_drop":    entity.ActionDragDrop,
		"get_page_content": entity.ActionExtractContent,
	}
	for alias, want := range tests {
		t.Run(alias, func(t *testing.T) {
			exec := &stubExecutor{}
			s := newTestServer(exec, stubBrowser{})

			rec := do(t, s.Router(), http.MethodPost, "/automation/"+alias, "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, exec.calls, 1)
			assert.Equal(t, want, exec.calls[0].name)
		})
	}
}

func TestAction_FailureStillOK(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{})

	rec := do(t, s.Router(), http.MethodPost, "/automation/missing", "{}")
	require.Equal(t, http.StatusOK, rec.Code)

	var res entity.ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "InvalidArguments", res.ErrorKind)
	assert.Equal(t, "about:blank", res.URL)
}

func TestAction_BodyTooLarge(t *testing.T) {
	exec := &stubExecutor{}
	s := newTestServer(exec, stubBrowser{})

	rec := do(t, s.Router(), http.MethodPost, "/automation/navigate_to", strings.Repeat("x", maxBodyBytes+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, exec.calls)
}

func TestAction_WrongMethod(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{})

	rec := do(t, s.Router(), http.MethodGet, "/automation/navigate_to", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListActions(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{})

	rec := do(t, s.Router(), http.MethodGet, "/automation/actions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"navigate_to"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{})

	rec := do(t, s.Router(), http.MethodOptions, "/automation/complete_intervention", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(&stubExecutor{}, stubBrowser{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
