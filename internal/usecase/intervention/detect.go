package intervention

import (
	"fmt"
	"strings"

	"browser-automation/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// Confidence holds the score each detector reports for a structural match
// (markup) or a keyword match in the page text.
type Confidence struct {
	CaptchaMarkup   float64
	CaptchaKeyword  float64
	LoginForm       float64
	LoginKeyword    float64
	SecurityKeyword float64
	AntiBotMarkup   float64
	AntiBotKeyword  float64
	CookieBanner    float64
}

func DefaultConfidence() Confidence {
	return Confidence{
		CaptchaMarkup:   0.9,
		CaptchaKeyword:  0.7,
		LoginForm:       0.8,
		LoginKeyword:    0.6,
		SecurityKeyword: 0.8,
		AntiBotMarkup:   0.9,
		AntiBotKeyword:  0.7,
		CookieBanner:    0.8,
	}
}

// Document is a parsed page ready for the detectors.
type Document struct {
	URL   string
	Title string
	dom   *goquery.Document
	text  string
}

// ParseDocument parses the page markup. Text falls back to the text content
// of the parsed body when the page did not supply rendered text.
func ParseDocument(page entity.PageDocument) (*Document, error) {
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}
	text := page.Text
	if strings.TrimSpace(text) == "" {
		text = dom.Find("body").Text()
	}
	return &Document{URL: page.URL, Title: page.Title, dom: dom, text: text}, nil
}

// Has reports whether any selector matches.
func (d *Document) Has(selectors ...string) bool {
	for _, s := range selectors {
		if d.dom.Find(s).Length() > 0 {
			return true
		}
	}
	return false
}

// HasText reports whether an element named tag contains phrase, ignoring case.
func (d *Document) HasText(tag, phrase string) bool {
	return d.FirstWithText(tag, phrase) != nil
}

// FirstWithText returns the first element named tag containing phrase.
func (d *Document) FirstWithText(tag, phrase string) *goquery.Selection {
	phrase = strings.ToLower(phrase)
	match := d.dom.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), phrase)
	})
	if match.Length() == 0 {
		return nil
	}
	return match.First()
}

// Mentions reports whether the page text contains any keyword, ignoring case.
func (d *Document) Mentions(keywords ...string) bool {
	lower := strings.ToLower(d.text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func (d *Document) TextLength() int {
	return len([]rune(d.text))
}

// Detector checks a document for one kind of human gate.
type Detector struct {
	Type           entity.InterventionType
	Recommendation string
	Enabled        func(entity.DetectionChecks) bool
	Detect         func(*Document, Confidence) (bool, float64)
}

// Detectors run in this order; each is independent.
var Detectors = []Detector{
	{
		Type:           entity.InterventionCaptcha,
		Recommendation: "Please solve the CAPTCHA verification",
		Enabled:        func(c entity.DetectionChecks) bool { return c.Captcha },
		Detect:         detectCaptcha,
	},
	{
		Type:           entity.InterventionLoginRequired,
		Recommendation: "Please complete the login process",
		Enabled:        func(c entity.DetectionChecks) bool { return c.Login },
		Detect:         detectLogin,
	},
	{
		Type:           entity.InterventionSecurityCheck,
		Recommendation: "Please complete the security verification",
		Enabled:        func(c entity.DetectionChecks) bool { return c.Security },
		Detect:         detectSecurityCheck,
	},
	{
		Type:           entity.InterventionAntiBot,
		Recommendation: "Please wait for anti-bot protection to complete",
		Enabled:        func(c entity.DetectionChecks) bool { return c.AntiBot },
		Detect:         detectAntiBot,
	},
	{
		Type:           entity.InterventionCookiesConsent,
		Recommendation: "Please accept or decline cookie consent",
		Enabled:        func(c entity.DetectionChecks) bool { return c.Cookies },
		Detect:         detectCookieConsent,
	},
}

var (
	captchaSelectors = []string{
		`iframe[src*="recaptcha"]`,
		`iframe[src*="hcaptcha"]`,
		`.g-recaptcha`,
		`#recaptcha`,
		`[data-callback*="recaptcha"]`,
		`.h-captcha`,
		`.captcha`,
	}
	captchaKeywords = []string{"captcha", "verify you're human", "prove you're not a robot"}

	loginSelectors = []string{`input[type="password"]`, `form[action*="login"]`, `form[action*="signin"]`}
	loginKeywords  = []string{"sign in", "log in", "login required", "authentication required"}

	securityKeywords = []string{
		"verify your identity", "security check", "unusual activity", "verify it's you",
		"account verification", "suspicious activity", "additional verification", "confirm your identity",
	}

	antiBotSelectors = []string{`div[class*="cf-browser-verification"]`, `div[class*="cloudflare"]`}
	antiBotBanners   = []string{"Checking your browser", "Please wait while we verify", "DDoS protection"}
	antiBotKeywords  = []string{"checking your browser", "ddos protection", "cloudflare", "please wait while we verify", "bot protection"}

	cookieSelectors = []string{`div[class*="cookie"]`, `div[class*="consent"]`, `div[id*="cookie"]`}
)

func detectCaptcha(d *Document, c Confidence) (bool, float64) {
	if d.Has(captchaSelectors...) {
		return true, c.CaptchaMarkup
	}
	if d.Mentions(captchaKeywords...) {
		return true, c.CaptchaKeyword
	}
	return false, 0
}

func detectLogin(d *Document, c Confidence) (bool, float64) {
	if d.Has(loginSelectors...) || d.HasText("button", "Sign in") || d.HasText("button", "Log in") || d.HasText("a", "Login") {
		return true, c.LoginForm
	}
	if d.Mentions(loginKeywords...) {
		return true, c.LoginKeyword
	}
	return false, 0
}

func detectSecurityCheck(d *Document, c Confidence) (bool, float64) {
	if d.Mentions(securityKeywords...) {
		return true, c.SecurityKeyword
	}
	return false, 0
}

func detectAntiBot(d *Document, c Confidence) (bool, float64) {
	if d.Has(antiBotSelectors...) {
		return true, c.AntiBotMarkup
	}
	for _, banner := range antiBotBanners {
		if d.HasText("div", banner) {
			return true, c.AntiBotMarkup
		}
	}
	if d.Mentions(antiBotKeywords...) {
		return true, c.AntiBotKeyword
	}
	return false, 0
}

// detectCookieConsent only trusts a candidate banner whose own text talks
// about cookies or consent.
func detectCookieConsent(d *Document, c Confidence) (bool, float64) {
	candidates := []*goquery.Selection{
		d.FirstWithText("div", "cookie"),
		d.FirstWithText("div", "Accept"),
		d.FirstWithText("button", "Accept"),
	}
	for _, sel := range cookieSelectors {
		if s := d.dom.Find(sel); s.Length() > 0 {
			candidates = append(candidates, s.First())
		}
	}

	for _, s := range candidates {
		if s == nil {
			continue
		}
		text := strings.ToLower(s.Text())
		if strings.Contains(text, "cookie") || strings.Contains(text, "consent") {
			return true, c.CookieBanner
		}
	}
	return false, 0
}

// Detect runs the enabled detectors over page. It has no side effects.
func Detect(page entity.PageDocument, checks entity.DetectionChecks, conf Confidence) (*entity.DetectionReport, error) {
	doc, err := ParseDocument(page)
	if err != nil {
		return nil, err
	}

	report := &entity.DetectionReport{
		DetectedTypes:    []entity.InterventionType{},
		Recommendations:  []string{},
		ConfidenceScores: map[entity.InterventionType]float64{},
		PageIndicators: entity.PageIndicators{
			URL:              doc.URL,
			Title:            doc.Title,
			HasPasswordField: doc.Has(`input[type="password"]`),
			HasCaptchaIframe: doc.Has(`iframe[src*="recaptcha"]`),
			PageTextLength:   doc.TextLength(),
		},
	}

	for _, det := range Detectors {
		if !det.Enabled(checks) {
			continue
		}
		found, score := det.Detect(doc, conf)
		if !found {
			continue
		}
		report.DetectedTypes = append(report.DetectedTypes, det.Type)
		report.Recommendations = append(report.Recommendations, det.Recommendation)
		report.ConfidenceScores[det.Type] = score
	}
	report.InterventionNeeded = len(report.DetectedTypes) > 0
	return report, nil
}
