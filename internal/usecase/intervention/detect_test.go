package intervention

import (
	"testing"

	"browser-automation/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(html string) entity.PageDocument {
	return entity.PageDocument{URL: "https://example.com", Title: "Example", HTML: html}
}

func TestDetect_Verdicts(t *testing.T) {
	conf := DefaultConfidence()
	tests := []struct {
		name  string
		html  string
		typ   entity.InterventionType
		score float64
	}{
		{"recaptcha iframe", `<iframe src="https://www.google.com/recaptcha/api2/anchor"></iframe>`, entity.InterventionCaptcha, conf.CaptchaMarkup},
		{"hcaptcha div", `<div class="h-captcha"></div>`, entity.InterventionCaptcha, conf.CaptchaMarkup},
		{"captcha keyword", `<p>Please verify you're human</p>`, entity.InterventionCaptcha, conf.CaptchaKeyword},
		{"password field", `<form><input type="password"></form>`, entity.InterventionLoginRequired, conf.LoginForm},
		{"sign in button", `<button>Sign In</button>`, entity.InterventionLoginRequired, conf.LoginForm},
		{"login keyword", `<p>Authentication required to continue</p>`, entity.InterventionLoginRequired, conf.LoginKeyword},
		{"security keyword", `<h1>Unusual activity detected</h1>`, entity.InterventionSecurityCheck, conf.SecurityKeyword},
		{"cloudflare markup", `<div class="cf-browser-verification"></div>`, entity.InterventionAntiBot, conf.AntiBotMarkup},
		{"checking banner", `<div>Checking your browser before accessing</div>`, entity.InterventionAntiBot, conf.AntiBotMarkup},
		{"bot keyword", `<span>bot protection enabled</span>`, entity.InterventionAntiBot, conf.AntiBotKeyword},
		{"cookie banner", `<div id="cookie-banner">We use cookies <button>Accept</button></div>`, entity.InterventionCookiesConsent, conf.CookieBanner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Detect(page(`<html><body>`+tt.html+`</body></html>`), entity.AllChecks(), conf)
			require.NoError(t, err)

			assert.True(t, report.InterventionNeeded)
			assert.Contains(t, report.DetectedTypes, tt.typ)
			assert.Equal(t, tt.score, report.ConfidenceScores[tt.typ])
		})
	}
}

func TestDetect_CleanPage(t *testing.T) {
	report, err := Detect(page(`<html><body><h1>Docs</h1><a href="/x">Read more</a></body></html>`), entity.AllChecks(), DefaultConfidence())
	require.NoError(t, err)

	assert.False(t, report.InterventionNeeded)
	assert.Empty(t, report.DetectedTypes)
	assert.Empty(t, report.Recommendations)
}

func TestDetect_AcceptWithoutCookieTextIsIgnored(t *testing.T) {
	report, err := Detect(page(`<div class="terms"><button>Accept terms</button></div>`), entity.DetectionChecks{Cookies: true}, DefaultConfidence())
	require.NoError(t, err)
	assert.False(t, report.InterventionNeeded)
}

func TestDetect_AllChecksDisabled(t *testing.T) {
	html := `<div class="g-recaptcha"></div><input type="password"><div class="cookie">cookie</div>`
	report, err := Detect(page(html), entity.DetectionChecks{}, DefaultConfidence())
	require.NoError(t, err)

	assert.False(t, report.InterventionNeeded)
	assert.NotNil(t, report.Recommendations)
	assert.Empty(t, report.Recommendations)
	assert.NotNil(t, report.ConfidenceScores)
	assert.Empty(t, report.ConfidenceScores)
	assert.True(t, report.PageIndicators.HasPasswordField)
}

func TestDetect_IndicatorsAndOrder(t *testing.T) {
	html := `<iframe src="https://recaptcha.net/x"></iframe><input type="password"><p>Security check</p>`
	doc := page(html)
	doc.Text = "Security check"

	report, err := Detect(doc, entity.AllChecks(), DefaultConfidence())
	require.NoError(t, err)

	assert.Equal(t, []entity.InterventionType{
		entity.InterventionCaptcha,
		entity.InterventionLoginRequired,
		entity.InterventionSecurityCheck,
	}, report.DetectedTypes)
	assert.Equal(t, []string{
		"Please solve the CAPTCHA verification",
		"Please complete the login process",
		"Please complete the security verification",
	}, report.Recommendations)
	assert.Equal(t, entity.PageIndicators{
		URL:              "https://example.com",
		Title:            "Example",
		HasPasswordField: true,
		HasCaptchaIframe: true,
		PageTextLength:   len("Security check"),
	}, report.PageIndicators)
}

func TestDetect_ConfigurableConfidence(t *testing.T) {
	conf := DefaultConfidence()
	conf.SecurityKeyword = 0.42

	report, err := Detect(page(`<p>confirm your identity</p>`), entity.DetectionChecks{Security: true}, conf)
	require.NoError(t, err)
	assert.Equal(t, 0.42, report.ConfidenceScores[entity.InterventionSecurityCheck])
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Anti Bot Protection", TypeLabel(entity.InterventionAntiBot))
	assert.Equal(t, "Captcha", TypeLabel(entity.InterventionCaptcha))
}
