package di

import (
	"context"
	"fmt"

	"browser-automation/internal/adapter/action"
	"browser-automation/internal/adapter/httpapi"
	"browser-automation/internal/application/port/input"
	"browser-automation/internal/application/port/output"
	"browser-automation/internal/application/service"
	"browser-automation/internal/infrastructure/browser/rod"
	"browser-automation/internal/infrastructure/env"
	"browser-automation/internal/infrastructure/htmltext"
	"browser-automation/internal/infrastructure/logger"
	"browser-automation/internal/infrastructure/ocr"
	"browser-automation/internal/infrastructure/userinteraction"
	"browser-automation/internal/usecase/dom"
	"browser-automation/internal/usecase/executor"
	"browser-automation/internal/usecase/intervention"
	"browser-automation/internal/usecase/session"
)

type Container struct {
	Browser       *rod.BrowserAdapter
	Logger        output.LoggerPort
	Actions       output.ActionRegistry
	Session       *session.Registry
	Interventions *intervention.Manager
	Executor      input.ActionExecutor
	Server        *httpapi.Server
}

func NewContainer(ctx context.Context, cfg env.Config) (*Container, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.File = cfg.Log.File
	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browser, err := rod.NewBrowserAdapter(ctx, browserConfig(cfg.Browser))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	sess, err := session.New(ctx, browser, session.Timeouts{
		Navigation:  cfg.Timeouts.Navigation,
		NetworkIdle: cfg.Timeouts.NetworkIdle,
	}, log)
	if err != nil {
		browser.Close()
		log.Close()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	engine := dom.NewEngine(dom.DefaultCaptureConfig, log)
	console := userinteraction.NewOperatorConsole(cfg.Intervention.CallbackURL)
	interventions := intervention.NewManager(interventionConfig(cfg.Intervention), console, log)

	var ocrPort output.OCRPort
	if cfg.OCR.Enabled {
		ocrPort = ocr.NewTesseract(cfg.OCR.Command)
	}

	timeouts := action.DefaultTimeouts()
	timeouts.History = cfg.Timeouts.History
	timeouts.Click = cfg.Timeouts.Click

	actions := service.NewActionRegistry()
	action.RegisterAll(actions, &action.Deps{
		Session:       sess,
		Engine:        engine,
		Interventions: interventions,
		Text:          htmltext.NewExtractor(htmltext.DefaultConfig),
		OCR:           ocrPort,
		Logger:        log,
		Timeouts:      timeouts,
	})

	exec := executor.New(actions, sess, engine, ocrPort, log, executor.Config{
		SettleDelay: cfg.Timeouts.Settle,
		OCR:         cfg.OCR.Enabled,
	})

	serverCfg := httpapi.DefaultConfig()
	serverCfg.Addr = cfg.Server.Addr
	serverCfg.LogLevel = cfg.Log.Level

	return &Container{
		Browser:       browser,
		Logger:        log,
		Actions:       actions,
		Session:       sess,
		Interventions: interventions,
		Executor:      exec,
		Server:        httpapi.NewServer(serverCfg, exec, browser, log),
	}, nil
}

func browserConfig(c env.BrowserConfig) rod.BrowserConfig {
	out := rod.DefaultConfig()
	out.Headless = c.Headless
	out.NoSandbox = c.NoSandbox
	out.SlowMotion = c.SlowMotion
	out.ControlURL = c.ControlURL
	out.ViewportWidth = c.ViewportWidth
	out.ViewportHeight = c.ViewportHeight
	return out
}

func interventionConfig(c env.InterventionConfig) intervention.Config {
	return intervention.Config{
		ScreenshotDir:         c.ScreenshotDir,
		CallbackURL:           c.CallbackURL,
		DefaultTimeoutSeconds: int(c.DefaultTimeout.Seconds()),
		Confidence: intervention.Confidence{
			CaptchaMarkup:   c.CaptchaMarkup,
			CaptchaKeyword:  c.CaptchaKeyword,
			LoginForm:       c.LoginForm,
			LoginKeyword:    c.LoginKeyword,
			SecurityKeyword: c.SecurityKeyword,
			AntiBotMarkup:   c.AntiBotMarkup,
			AntiBotKeyword:  c.AntiBotKeyword,
			CookieBanner:    c.CookieBanner,
		},
	}
}

// Close stops the browser first so in-flight CDP calls fail fast, then
// flushes the logger.
func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
