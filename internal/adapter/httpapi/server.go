// Package httpapi exposes the action dispatcher over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"browser-automation/internal/application/port/input"
	"browser-automation/internal/application/port/output"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

// Versioner reports the connected browser's version over CDP.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

type Config struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// AccessLogJSON switches httplog to JSON lines.
	AccessLogJSON bool
	LogLevel      string
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		RequestTimeout:  120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AccessLogJSON:   true,
		LogLevel:        "info",
	}
}

type Server struct {
	cfg      Config
	handlers *Handlers
	logger   output.LoggerPort
	http     *http.Server
}

func NewServer(cfg Config, exec input.ActionExecutor, browser Versioner, logger output.LoggerPort) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	s := &Server{
		cfg:      cfg,
		handlers: NewHandlers(exec, browser, logger),
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	accessLog := httplog.NewLogger("browser-automation", httplog.Options{
		JSON:     s.cfg.AccessLogJSON,
		LogLevel: s.cfg.LogLevel,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(accessLog, []string{"/health"}))
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	// overlay buttons post from whatever origin the automated page has
	r.Use(corsMiddleware)

	s.handlers.RegisterRoutes(r)
	return r
}

// Serve blocks until ctx is cancelled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("HTTP server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
