// Package rod drives Chromium over CDP with go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"browser-automation/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	defaultSlowMotion = 0
	defaultTimeout    = 10 * time.Second
	defaultMaxWidth   = 1024
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var errClosed = errors.New("browser is closed")

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds element lookups that have no deadline of their own.
	Timeout   time.Duration
	NoSandbox bool
	DevTools  bool
	// DisableSecurityFeatures turns off same-origin checks. Only for trusted pages.
	DisableSecurityFeatures bool
	// ControlURL attaches to a running browser instead of launching one.
	ControlURL     string
	ViewportWidth  int
	ViewportHeight int
	// ScreenshotMaxWidth down-scales wider captures; 0 keeps them.
	ScreenshotMaxWidth int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:           false,
		SlowMotion:         defaultSlowMotion,
		Timeout:            defaultTimeout,
		NoSandbox:          false,
		DevTools:           false,
		ScreenshotMaxWidth: defaultMaxWidth,
	}
}

// BrowserAdapter owns either a launched Chromium process or a CDP connection
// to an external one.
type BrowserAdapter struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      BrowserConfig
	closed   bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	controlURL := cfg.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().
			Context(ctx).
			Headless(cfg.Headless).
			Devtools(cfg.DevTools).
			NoSandbox(cfg.NoSandbox).
			Delete("use-mock-keychain")
		if cfg.DisableSecurityFeatures {
			l = l.Set("disable-web-security").Set("allow-running-insecure-content")
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
			l.Cleanup()
		}
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", controlURL, err)
	}

	return &BrowserAdapter{browser: browser, launcher: l, cfg: cfg}, nil
}

// NewPage opens a blank tab. The page keeps no reference to ctx.
func (b *BrowserAdapter) NewPage(ctx context.Context) (output.PagePort, error) {
	if !b.IsReady() {
		return nil, errClosed
	}
	pg, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if b.cfg.ViewportWidth > 0 && b.cfg.ViewportHeight > 0 {
		err := pg.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             b.cfg.ViewportWidth,
			Height:            b.cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}
	return newPage(pg, b.cfg), nil
}

// Version is the browser product string, e.g. "HeadlessChrome/120.0.6099.109".
func (b *BrowserAdapter) Version(ctx context.Context) (string, error) {
	if !b.IsReady() {
		return "", errClosed
	}
	v, err := b.browser.Context(ctx).Version()
	if err != nil {
		return "", fmt.Errorf("failed to read browser version: %w", err)
	}
	return v.Product, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.browser != nil
}

// Close is idempotent. A launched process is killed, an attached browser is
// only disconnected.
func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.launcher == nil {
		return
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
	b.launcher.Kill()
	b.launcher.Cleanup()
}
