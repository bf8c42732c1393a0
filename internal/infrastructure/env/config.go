package env

import (
	"time"

	"browser-automation/internal/application/port/output"
)

// Config is the typed process configuration.
type Config struct {
	Browser      BrowserConfig
	Timeouts     TimeoutConfig
	Intervention InterventionConfig
	OCR          OCRConfig
	Server       ServerConfig
	Log          LogConfig
}

type BrowserConfig struct {
	Headless       bool
	NoSandbox      bool
	SlowMotion     time.Duration
	ControlURL     string
	ViewportWidth  int
	ViewportHeight int
}

type TimeoutConfig struct {
	Navigation  time.Duration
	NetworkIdle time.Duration
	History     time.Duration
	Click       time.Duration
	Settle      time.Duration
}

type InterventionConfig struct {
	ScreenshotDir  string
	CallbackURL    string
	DefaultTimeout time.Duration

	CaptchaMarkup   float64
	CaptchaKeyword  float64
	LoginForm       float64
	LoginKeyword    float64
	SecurityKeyword float64
	AntiBotMarkup   float64
	AntiBotKeyword  float64
	CookieBanner    float64
}

type OCRConfig struct {
	Enabled bool
	Command string
}

type ServerConfig struct {
	Addr string
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads every setting from cfg, falling back to defaults.
func Load(cfg output.ConfigPort) Config {
	addr := cfg.GetWithDefault("HTTP_ADDR", ":8000")
	return Config{
		Browser: BrowserConfig{
			Headless:       cfg.GetBool("BROWSER_HEADLESS", true),
			NoSandbox:      cfg.GetBool("BROWSER_NO_SANDBOX", false),
			SlowMotion:     cfg.GetDuration("BROWSER_SLOW_MOTION", 0),
			ControlURL:     cfg.Get("BROWSER_CONTROL_URL"),
			ViewportWidth:  cfg.GetInt("BROWSER_VIEWPORT_WIDTH", 1280),
			ViewportHeight: cfg.GetInt("BROWSER_VIEWPORT_HEIGHT", 800),
		},
		Timeouts: TimeoutConfig{
			Navigation:  cfg.GetDuration("NAVIGATION_TIMEOUT", 60*time.Second),
			NetworkIdle: cfg.GetDuration("NETWORK_IDLE_TIMEOUT", 10*time.Second),
			History:     cfg.GetDuration("HISTORY_TIMEOUT", 30*time.Second),
			Click:       cfg.GetDuration("CLICK_TIMEOUT", 5*time.Second),
			Settle:      cfg.GetDuration("STATE_SETTLE_DELAY", 500*time.Millisecond),
		},
		Intervention: InterventionConfig{
			ScreenshotDir:  cfg.GetWithDefault("INTERVENTION_SCREENSHOT_DIR", "screenshots"),
			CallbackURL:    cfg.GetWithDefault("INTERVENTION_CALLBACK_URL", callbackURL(addr)),
			DefaultTimeout: cfg.GetDuration("INTERVENTION_DEFAULT_TIMEOUT", 300*time.Second),

			CaptchaMarkup:   cfg.GetFloat("CONFIDENCE_CAPTCHA_MARKUP", 0.9),
			CaptchaKeyword:  cfg.GetFloat("CONFIDENCE_CAPTCHA_KEYWORD", 0.7),
			LoginForm:       cfg.GetFloat("CONFIDENCE_LOGIN_FORM", 0.8),
			LoginKeyword:    cfg.GetFloat("CONFIDENCE_LOGIN_KEYWORD", 0.6),
			SecurityKeyword: cfg.GetFloat("CONFIDENCE_SECURITY_KEYWORD", 0.8),
			AntiBotMarkup:   cfg.GetFloat("CONFIDENCE_ANTIBOT_MARKUP", 0.9),
			AntiBotKeyword:  cfg.GetFloat("CONFIDENCE_ANTIBOT_KEYWORD", 0.7),
			CookieBanner:    cfg.GetFloat("CONFIDENCE_COOKIE_BANNER", 0.8),
		},
		OCR: OCRConfig{
			Enabled: cfg.GetBool("OCR_ENABLED", false),
			Command: cfg.GetWithDefault("OCR_COMMAND", "tesseract"),
		},
		Server: ServerConfig{Addr: addr},
		Log: LogConfig{
			Level: cfg.GetWithDefault("LOG_LEVEL", "info"),
			File:  cfg.Get("LOG_FILE"),
		},
	}
}

// callbackURL derives the overlay callback base from the listen address.
func callbackURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
