package action

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"browser-automation/internal/application/service"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
	"browser-automation/internal/infrastructure/browser/fake"
	"browser-automation/internal/infrastructure/htmltext"
	"browser-automation/internal/infrastructure/logger"
	"browser-automation/internal/usecase/dom"
	"browser-automation/internal/usecase/intervention"
	"browser-automation/internal/usecase/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopOperator struct{}

func (nopOperator) AnnounceIntervention(context.Context, *entity.InterventionRequest) {}
func (nopOperator) AnnounceResolution(context.Context, *entity.InterventionRequest)   {}

type testEnv struct {
	browser *fake.Browser
	page    *fake.Page
	deps    *Deps
	// scripts answers non-capture evaluations.
	scripts fake.EvalFunc
}

func raw(tag string, attrs map[string]string, text string, vp geometry.Rect) map[string]any {
	page := vp
	page.Y += 100
	return map[string]any{"tag": tag, "attributes": attrs, "text": text, "page": page, "viewport": vp}
}

func newEnv(t *testing.T, elements ...map[string]any) *testEnv {
	t.Helper()
	env := &testEnv{browser: fake.NewBrowser()}
	env.page = fake.NewPage("https://shop.example/")
	env.page.Title = "Shop"
	env.page.OnEval = func(js string, args ...any) (any, error) {
		if len(args) > 0 && args[0] == dom.InteractiveSelector {
			if elements == nil {
				elements = []map[string]any{}
			}
			return map[string]any{
				"url":         env.page.URL,
				"title":       env.page.Title,
				"viewport":    map[string]any{"width": 1280, "height": 720},
				"scrollY":     100,
				"totalHeight": 2000,
				"elements":    elements,
			}, nil
		}
		if env.scripts != nil {
			return env.scripts(js, args...)
		}
		return nil, nil
	}
	env.browser.PageFactory = func() *fake.Page { return env.page }

	log := logger.NewNop()
	reg, err := session.New(context.Background(), env.browser, session.DefaultTimeouts(), log)
	require.NoError(t, err)

	icfg := intervention.DefaultConfig()
	icfg.ScreenshotDir = t.TempDir()
	icfg.CallbackURL = "http://localhost:8000"

	timeouts := DefaultTimeouts()
	timeouts.CookieChecks = []time.Duration{0, 0}
	env.deps = &Deps{
		Session:       reg,
		Engine:        dom.NewEngine(dom.DefaultCaptureConfig, log),
		Interventions: intervention.NewManager(icfg, nopOperator{}, log),
		Text:          htmltext.NewExtractor(htmltext.DefaultConfig),
		Logger:        log,
		Timeouts:      timeouts,
	}
	return env
}

func (e *testEnv) run(t *testing.T, name entity.ActionName, args string) (*entity.ActionOutput, error) {
	t.Helper()
	registry := service.NewActionRegistry()
	RegisterAll(registry, e.deps)
	a, ok := registry.Get(name)
	require.True(t, ok, "action %s not registered", name)
	return a.Execute(context.Background(), args)
}

func TestRegisterAll_CoversCatalogue(t *testing.T) {
	env := newEnv(t)
	registry := service.NewActionRegistry()
	RegisterAll(registry, env.deps)

	seen := map[entity.ActionName]bool{}
	for _, a := range registry.All() {
		assert.False(t, seen[a.Name()], "duplicate %s", a.Name())
		seen[a.Name()] = true
		assert.NotEmpty(t, a.Description())
		assert.Equal(t, "object", a.Parameters()["type"])
	}
	assert.Len(t, seen, 40)
	for _, alias := range entity.ActionAliases {
		assert.True(t, seen[alias], "alias target %s", alias)
	}
}

func TestInputText_IndexWithoutIdentifiersTypesAtCoordinates(t *testing.T) {
	env := newEnv(t, raw("div", map[string]string{"contenteditable": "true"}, "", geometry.Rect{X: 100, Y: 50, Width: 200, Height: 40}))

	out, err := env.run(t, entity.ActionInputText, `{"index": 1, "text": "hello"}`)
	require.NoError(t, err)
	assert.Contains(t, out.Message, "at (200, 70)")
	assert.Equal(t, []string{
		"mouse.click 200,70",
		"keyboard.press Control+a",
		"keyboard.press Backspace",
		"keyboard.type hello",
	}, env.page.Recorded())
}

func TestInputText_SelectorFocusesAndReplaces(t *testing.T) {
	env := newEnv(t)
	field := env.page.AddElement(&fake.Element{
		Tag:        "input",
		Attributes: map[string]string{"id": "email"},
		Rect:       geometry.Rect{X: 10, Y: 10, Width: 100, Height: 20},
		Value:      "old",
	}, "#email", "form input")

	_, err := env.run(t, entity.ActionInputText, `{"selector": "form input", "text": "a@b.c"}`)
	require.NoError(t, err)
	assert.True(t, field.Focused)
	assert.Equal(t, "a@b.c", field.Value)
}

func TestInputText_RequiresText(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionInputText, `{"index": 1}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestClickElement_PrefersID(t *testing.T) {
	env := newEnv(t, raw("button", map[string]string{"id": "buy", "name": "buy-btn"}, "Buy", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}))
	button := env.page.AddElement(&fake.Element{Tag: "button"}, "#buy")

	out, err := env.run(t, entity.ActionClickElement, `{"index": 1}`)
	require.NoError(t, err)
	assert.Equal(t, 1, button.Clicks)
	assert.Equal(t, "Clicked element with index 1", out.Message)
}

func TestClickElement_FocusesTextEntry(t *testing.T) {
	env := newEnv(t, raw("input", map[string]string{"id": "q"}, "", geometry.Rect{X: 0, Y: 0, Width: 100, Height: 20}))
	field := env.page.AddElement(&fake.Element{Tag: "input"}, "#q")

	_, err := env.run(t, entity.ActionClickElement, `{"index": 1}`)
	require.NoError(t, err)
	assert.True(t, field.Focused)
	assert.Equal(t, 1, field.Clicks)
}

func TestClickElement_ButtonIsNotFocused(t *testing.T) {
	env := newEnv(t, raw("button", map[string]string{"id": "buy"}, "Buy", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}))
	button := env.page.AddElement(&fake.Element{Tag: "button"}, "#buy")

	_, err := env.run(t, entity.ActionClickElement, `{"index": 1}`)
	require.NoError(t, err)
	assert.False(t, button.Focused)
}

func TestClickElement_FallsBackToCoordinatesOnce(t *testing.T) {
	env := newEnv(t, raw("button", map[string]string{"name": "go"}, "Go", geometry.Rect{X: 0, Y: 0, Width: 40, Height: 20}))
	env.page.AddElement(&fake.Element{Tag: "button", ClickErr: errors.New("node detached")}, `[name="go"]`)

	out, err := env.run(t, entity.ActionClickElement, `{"index": 1}`)
	require.NoError(t, err)
	assert.Contains(t, out.Message, "at (20, 10)")
	assert.Equal(t, []string{"mouse.click 20,10"}, env.page.Recorded())
}

func TestClickElement_UnknownIndex(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionClickElement, `{"index": 7}`)
	assert.ErrorIs(t, err, entity.ErrElementNotFound)
	assert.Equal(t, "ElementNotFound", entity.ErrorKind(err))
}

func TestClickElement_NeedsTarget(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionClickElement, `{}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestClickCoordinates(t *testing.T) {
	env := newEnv(t)
	out, err := env.run(t, entity.ActionClickCoordinates, `{"x": 5, "y": 6.5}`)
	require.NoError(t, err)
	assert.Equal(t, "Clicked at coordinates (5, 6.5)", out.Message)

	_, err = env.run(t, entity.ActionClickCoordinates, `{"x": 5}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestIsKeyCombo(t *testing.T) {
	tests := map[string]bool{
		"Enter":              true,
		"Control+a":          true,
		"Control+Shift+Tab":  true,
		"hello":              false,
		"a+b":                false,
		"Control+everything": false,
		"+":                  false,
	}
	for keys, want := range tests {
		assert.Equal(t, want, IsKeyCombo(keys), keys)
	}
}

func TestSendKeys(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionSendKeys, `{"keys": "Enter"}`)
	require.NoError(t, err)
	_, err = env.run(t, entity.ActionSendKeys, `{"keys": "hi there"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"keyboard.press Enter", "keyboard.type hi there"}, env.page.Recorded())
}

func TestDragDrop_Coordinates(t *testing.T) {
	env := newEnv(t)
	out, err := env.run(t, entity.ActionDragDrop,
		`{"source_x": 0, "source_y": 0, "target_x": 40, "target_y": 0, "target_offset_y": 8, "steps": 4, "delay_ms": 0}`)
	require.NoError(t, err)
	assert.Equal(t, "Dragged from (0, 0) to (40, 8)", out.Message)
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 2}, {X: 20, Y: 4}, {X: 30, Y: 6}, {X: 40, Y: 8}}, env.page.Moves)

	rec := env.page.Recorded()
	assert.Equal(t, "mouse.down", rec[1])
	assert.Equal(t, "mouse.up", rec[len(rec)-1])
}

func TestDragDrop_ElementsByIndex(t *testing.T) {
	env := newEnv(t,
		raw("div", nil, "Card", geometry.Rect{X: 0, Y: 0, Width: 20, Height: 20}),
		raw("div", nil, "Lane", geometry.Rect{X: 100, Y: 0, Width: 20, Height: 20}),
	)
	out, err := env.run(t, entity.ActionDragDrop, `{"source": "1", "target": "2", "delay_ms": 0}`)
	require.NoError(t, err)
	assert.Equal(t, "Dragged from (10, 10) to (110, 10)", out.Message)
	assert.Len(t, env.page.Moves, 1+dom.DefaultDragSteps)
}

func TestDragDrop_MissingEndpoint(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionDragDrop, `{"source_x": 1, "source_y": 1}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestDropdown_SelectorPath(t *testing.T) {
	env := newEnv(t)
	sel := env.page.AddElement(&fake.Element{
		Tag:        "select",
		Attributes: map[string]string{"id": "size"},
		Rect:       geometry.Rect{X: 0, Y: 0, Width: 50, Height: 20},
		Choices: []entity.DropdownOption{
			{Index: 0, Text: "Small", Value: "s", Selected: true},
			{Index: 1, Text: "Large", Value: "l"},
		},
	}, "#size")

	out, err := env.run(t, entity.ActionGetDropdownOptions, `{"selector": "#size"}`)
	require.NoError(t, err)
	assert.Contains(t, out.Message, "Found 2 options")

	_, err = env.run(t, entity.ActionSelectDropdownOption, `{"selector": "#size", "text": "Large"}`)
	require.NoError(t, err)
	assert.Equal(t, "l", sel.Value)
}

func TestDropdown_PointPathUsesScript(t *testing.T) {
	env := newEnv(t, raw("select", nil, "", geometry.Rect{X: 0, Y: 0, Width: 50, Height: 20}))
	env.scripts = func(js string, args ...any) (any, error) {
		if strings.Contains(js, "elementFromPoint") && len(args) == 2 {
			return []entity.DropdownOption{{Index: 0, Text: "Red", Value: "r"}}, nil
		}
		return false, nil
	}

	out, err := env.run(t, entity.ActionGetDropdownOptions, `{"index": 1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"options": []entity.DropdownOption{{Index: 0, Text: "Red", Value: "r"}}}, out.Content)

	_, err = env.run(t, entity.ActionSelectDropdownOption, `{"index": 1, "text": "Blue"}`)
	assert.ErrorIs(t, err, entity.ErrElementNotFound)
}

func TestTabs(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionCloseTab, `{"page_id": 0}`)
	assert.ErrorIs(t, err, entity.ErrInvalidOperation)

	second := fake.NewPage("about:blank")
	env.browser.PageFactory = func() *fake.Page { return second }
	out, err := env.run(t, entity.ActionOpenTab, `{"url": "https://docs.example/"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"page_id": 1}, out.Content)

	out, err = env.run(t, entity.ActionListTabs, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Found 2 open tabs", out.Message)

	_, err = env.run(t, entity.ActionSwitchTab, `{"tab_index": 5}`)
	assert.ErrorIs(t, err, entity.ErrIndexOutOfRange)

	_, err = env.run(t, entity.ActionCloseTab, `{"page_id": 1}`)
	require.NoError(t, err)
	assert.True(t, second.Closed)
	assert.Equal(t, 0, env.deps.Session.CurrentIndex())
}

func TestFrames(t *testing.T) {
	env := newEnv(t)
	env.page.FrameList = []*fake.Frame{fake.NewFrame("ads"), fake.NewFrame("checkout", `iframe[id="pay"]`)}

	_, err := env.run(t, entity.ActionSwitchToFrame, `{"frame": 1}`)
	require.NoError(t, err)
	assert.True(t, env.deps.Session.InFrame())

	_, err = env.run(t, entity.ActionSwitchToMainFrame, `{}`)
	require.NoError(t, err)
	assert.False(t, env.deps.Session.InFrame())

	_, err = env.run(t, entity.ActionSwitchToFrame, `{"frame": 2}`)
	require.NoError(t, err)
	_, err = env.run(t, entity.ActionSwitchToFrame, `{"frame": 0}`)
	require.NoError(t, err)
	assert.False(t, env.deps.Session.InFrame())

	_, err = env.run(t, entity.ActionSwitchToFrame, `{"frame": 3}`)
	assert.ErrorIs(t, err, entity.ErrIndexOutOfRange)

	_, err = env.run(t, entity.ActionSwitchToFrame, `{"frame_selector": "pay"}`)
	require.NoError(t, err)

	_, err = env.run(t, entity.ActionSwitchToFrame, `{"frame": "nope"}`)
	assert.ErrorIs(t, err, entity.ErrFrameNotFound)

	_, err = env.run(t, entity.ActionSwitchToFrame, `{}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestScroll(t *testing.T) {
	env := newEnv(t)
	var dy any
	env.scripts = func(js string, args ...any) (any, error) {
		if js == scrollByScript {
			dy = args[0]
		}
		return false, nil
	}

	out, err := env.run(t, entity.ActionScrollUp, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Scrolled up by 300 pixels", out.Message)
	assert.Equal(t, -300, dy)

	_, err = env.run(t, entity.ActionScrollToText, `{"text": "Shipping"}`)
	assert.ErrorIs(t, err, entity.ErrElementNotFound)

	out, err = env.run(t, entity.ActionScrollToBottom, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Scrolled to bottom of page", out.Message)
}

func TestExtractContent(t *testing.T) {
	env := newEnv(t)
	env.page.Markup = `<html><body><h1>Shop</h1><p>Free shipping</p><script>x()</script></body></html>`

	out, err := env.run(t, entity.ActionExtractContent, `{"goal": "shipping terms"}`)
	require.NoError(t, err)
	assert.Equal(t, "Extracted content from page (Goal: shipping terms)", out.Message)
	content := out.Content.(map[string]any)
	assert.Equal(t, "Shop\nFree shipping", content["text"])
	assert.Equal(t, "https://shop.example/", content["url"])
	assert.NotContains(t, content, "ocr_text")
}

func TestTakeScreenshot(t *testing.T) {
	env := newEnv(t)
	out, err := env.run(t, entity.ActionTakeScreenshot, `{}`)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Screenshot)
	require.NotNil(t, env.page.LastShotOptions)
	assert.True(t, env.page.LastShotOptions.FullPage)
}

func TestParsePDFOptions(t *testing.T) {
	opts, unknown, err := ParsePDFOptions(`{"landscape": true, "print_background": false, "margin": {"top": "2cm"}, "dpi": 300}`)
	require.NoError(t, err)
	assert.True(t, opts.Landscape)
	assert.False(t, opts.PrintBackground)
	assert.Equal(t, "A4", opts.Format)
	assert.Equal(t, entity.PDFMargin{Top: "2cm", Right: "1cm", Bottom: "1cm", Left: "1cm"}, opts.Margin)
	assert.Equal(t, []string{"dpi"}, unknown)

	opts, _, err = ParsePDFOptions(`{"options": {"format": "Letter", "displayHeaderFooter": true}}`)
	require.NoError(t, err)
	assert.Equal(t, "Letter", opts.Format)
	assert.True(t, opts.DisplayHeaderFooter)

	_, _, err = ParsePDFOptions(`{"format": "B9"}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestPDF_SizeChecks(t *testing.T) {
	env := newEnv(t)

	env.page.PDFData = []byte("%PDF")
	_, err := env.run(t, entity.ActionSavePDF, `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated PDF is empty")
	assert.ErrorIs(t, err, entity.ErrUpstreamFailure)

	env.page.PDFData = make([]byte, 500)
	out, err := env.run(t, entity.ActionGetPagePDF, `{}`)
	require.NoError(t, err)
	assert.Contains(t, out.Message, "unusually small")
	assert.Contains(t, out.Content, "pdf_base64")
}

func TestPDF_WritesPath(t *testing.T) {
	env := newEnv(t)
	env.page.PDFData = make([]byte, 4096)
	path := filepath.Join(t.TempDir(), "out", "page.pdf")

	args, _ := json.Marshal(map[string]any{"path": path})
	out, err := env.run(t, entity.ActionSavePDF, string(args))
	require.NoError(t, err)
	assert.Equal(t, "PDF saved to "+path+" (4096 bytes)", out.Message)
	assert.NotContains(t, out.Content, "pdf_base64")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 4096)
}

func TestSetCookie(t *testing.T) {
	env := newEnv(t)
	out, err := env.run(t, entity.ActionSetCookie, `{"name": "sid", "value": "42", "same_site": "lax"}`)
	require.NoError(t, err)
	assert.Equal(t, "Cookie 'sid' set successfully", out.Message)
	require.Len(t, env.page.Jar, 1)
	assert.Equal(t, "https://shop.example/", env.page.Jar[0].URL)
	assert.Equal(t, "/", env.page.Jar[0].Path)
	assert.Equal(t, "Lax", env.page.Jar[0].SameSite)
}

func TestSetCookie_NotStored(t *testing.T) {
	env := newEnv(t)
	env.page.DropCookies = true
	_, err := env.run(t, entity.ActionSetCookie, `{"name": "sid", "value": "42"}`)
	assert.ErrorIs(t, err, entity.ErrUpstreamFailure)

	_, err = env.run(t, entity.ActionSetCookie, `{"name": "sid"}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func TestSetCookie_StaleValueIsNotSuccess(t *testing.T) {
	env := newEnv(t)
	env.page.Jar = []entity.Cookie{{Name: "sid", Value: "old"}}
	env.page.DropCookies = true

	_, err := env.run(t, entity.ActionSetCookie, `{"name": "sid", "value": "new"}`)
	assert.ErrorIs(t, err, entity.ErrUpstreamFailure)
}

func TestSetCookie_ReplacesValue(t *testing.T) {
	env := newEnv(t)
	env.page.Jar = []entity.Cookie{{Name: "sid", Value: "old"}}

	out, err := env.run(t, entity.ActionSetCookie, `{"name": "sid", "value": "new"}`)
	require.NoError(t, err)
	stored, ok := out.Content.(map[string]any)["cookie"].(entity.Cookie)
	require.True(t, ok)
	assert.Equal(t, "new", stored.Value)
}

func TestSetCookie_EmptyValue(t *testing.T) {
	env := newEnv(t)
	_, err := env.run(t, entity.ActionSetCookie, `{"name": "sid", "value": ""}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
	assert.Empty(t, env.page.Jar)
}

func TestClearCookies(t *testing.T) {
	env := newEnv(t)
	env.page.Jar = []entity.Cookie{{Name: "a"}, {Name: "b"}}
	out, err := env.run(t, entity.ActionClearCookies, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Cleared 2 cookies", out.Message)
}

func TestDialogs(t *testing.T) {
	env := newEnv(t)
	var accept any
	env.scripts = func(js string, args ...any) (any, error) {
		if js == dialogScript {
			accept = args[0]
		}
		return nil, nil
	}
	out, err := env.run(t, entity.ActionDismissDialog, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Dialog handling set to dismiss dialogs", out.Message)
	assert.Equal(t, false, accept)
}

func TestSetNetworkConditions(t *testing.T) {
	env := newEnv(t)
	out, err := env.run(t, entity.ActionSetNetworkConditions, `{"latency": 40, "download_throughput": 1572864}`)
	require.NoError(t, err)
	assert.Equal(t, "Network conditions set: 40ms latency, 1.50 MB/s download", out.Message)
	require.NotNil(t, env.page.Network)
	assert.Equal(t, float64(-1), env.page.Network.UploadThroughput)
}

func TestInterventionFlow(t *testing.T) {
	env := newEnv(t)

	out, err := env.run(t, entity.ActionRequestIntervention,
		`{"intervention_type": "captcha", "message": "Solve it", "timeout_seconds": 120, "take_screenshot": false}`)
	require.NoError(t, err)
	assert.Equal(t, "Human intervention requested: captcha", out.Message)
	id := out.Content.(map[string]any)["intervention_id"].(string)
	require.NotEmpty(t, id)

	out, err = env.run(t, entity.ActionInterventionStatus, `{}`)
	require.NoError(t, err)
	status := out.Content.(map[string]any)
	assert.Equal(t, entity.InterventionPending, status["status"])
	assert.NotNil(t, status["time_remaining"])
	assert.Nil(t, status["completed_at"])

	out, err = env.run(t, entity.ActionCompleteIntervention, `{"intervention_id": "`+id+`", "user_message": "done"}`)
	require.NoError(t, err)
	assert.Equal(t, entity.InterventionCompleted, out.Content.(map[string]any)["status"])

	out, err = env.run(t, entity.ActionCancelIntervention, `{"intervention_id": "`+id+`"}`)
	assert.ErrorIs(t, err, entity.ErrInterventionNotFound)
	assert.Equal(t, "Intervention not found", out.Message)

	out, err = env.run(t, entity.ActionInterventionStatus, `{}`)
	assert.ErrorIs(t, err, entity.ErrNoActiveIntervention)
	assert.Equal(t, "No active interventions found", out.Message)
}

func TestRequestIntervention_InvalidType(t *testing.T) {
	env := newEnv(t)
	out, err := env.run(t, entity.ActionRequestIntervention, `{"intervention_type": "boss_fight", "message": "x"}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
	assert.Equal(t, "Failed to request intervention", out.Message)
}

func TestAutoDetect(t *testing.T) {
	env := newEnv(t)
	env.scripts = func(js string, args ...any) (any, error) {
		return map[string]any{
			"html": `<html><body><form><input type="password"></form><p>Please sign in</p></body></html>`,
			"text": "Please sign in",
		}, nil
	}
	out, err := env.run(t, entity.ActionAutoDetect, `{"check_cookies": false}`)
	require.NoError(t, err)
	assert.Equal(t, "Auto-detection completed. Intervention needed: true", out.Message)
	report := out.Content.(*entity.DetectionReport)
	assert.Contains(t, report.DetectedTypes, entity.InterventionLoginRequired)
	assert.True(t, report.PageIndicators.HasPasswordField)
}

func TestNavigation(t *testing.T) {
	env := newEnv(t)
	env.page.Loads["https://shop.example/sale"] = "Sale"

	out, err := env.run(t, entity.ActionNavigateTo, `{"url": "https://shop.example/sale"}`)
	require.NoError(t, err)
	assert.Equal(t, "Navigated to https://shop.example/sale", out.Message)
	assert.Equal(t, "Sale", env.page.Title)

	_, err = env.run(t, entity.ActionNavigateTo, `{}`)
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)

	_, err = env.run(t, entity.ActionGoBack, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/", env.page.URL)

	out, err = env.run(t, entity.ActionWait, `{"seconds": 0}`)
	require.NoError(t, err)
	assert.Equal(t, "Waited for 0 seconds", out.Message)
}

func TestSearchGoogle(t *testing.T) {
	env := newEnv(t)
	box := env.page.AddElement(&fake.Element{Tag: "textarea"}, `textarea[name="q"]`)

	out, err := env.run(t, entity.ActionSearchGoogle, `{"query": "rod cdp"}`)
	require.NoError(t, err)
	assert.Equal(t, "Searched for 'rod cdp' on Google", out.Message)
	assert.Equal(t, "rod cdp", box.Value)
	assert.Contains(t, env.page.Recorded(), "keyboard.press Enter")
}

func TestSearchGoogle_NoSearchBox(t *testing.T) {
	env := newEnv(t)
	env.deps.Timeouts.SearchInput = 50 * time.Millisecond
	_, err := env.run(t, entity.ActionSearchGoogle, `{"query": "x"}`)
	assert.ErrorIs(t, err, entity.ErrElementNotFound)
}
