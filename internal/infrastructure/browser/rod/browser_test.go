package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests launch a real headless Chromium and are skipped with -short.

func newTestBrowser(t *testing.T) *BrowserAdapter {
	t.Helper()
	if testing.Short() {
		t.Skip("launches a browser")
	}
	cfg := DefaultConfig()
	cfg.Headless = true
	cfg.NoSandbox = true

	b, err := NewBrowserAdapter(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func serve(t *testing.T, html string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func openPage(t *testing.T, html string) *Page {
	t.Helper()
	b := newTestBrowser(t)
	ctx := context.Background()

	pg, err := b.NewPage(ctx)
	require.NoError(t, err)
	page := pg.(*Page)

	nav, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, page.Navigate(nav, serve(t, html)))
	return page
}

func resultText(t *testing.T, p *Page) string {
	t.Helper()
	var text string
	require.NoError(t, p.Eval(context.Background(), `() => document.getElementById('result').textContent`, &text))
	return text
}

func TestBrowserAdapter_Lifecycle(t *testing.T) {
	b := newTestBrowser(t)
	ctx := context.Background()

	assert.True(t, b.IsReady())
	v, err := b.Version(ctx)
	require.NoError(t, err)
	assert.Contains(t, v, "Chrome")

	b.Close()
	b.Close()
	assert.False(t, b.IsReady())
	_, err = b.NewPage(ctx)
	assert.ErrorIs(t, err, errClosed)
}

func TestPage_NavigateAndInfo(t *testing.T) {
	p := openPage(t, BasicHTML)
	ctx := context.Background()

	info, err := p.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test Page", info.Title)

	html, err := p.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "Hello World")
}

func TestPage_NavigateDeadline(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer slow.Close()

	b := newTestBrowser(t)
	pg, err := b.NewPage(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.Error(t, pg.Navigate(ctx, slow.URL))
}

func TestPage_QueryAndClick(t *testing.T) {
	p := openPage(t, InteractiveHTML)
	ctx := context.Background()

	el, err := p.Query(ctx, "#btn")
	require.NoError(t, err)

	tag, attrs, err := el.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "button", tag)
	assert.Equal(t, "btn", attrs["id"])

	box, err := el.Box(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 60, box.Center().X, 1)
	assert.InDelta(t, 30, box.Center().Y, 1)

	require.NoError(t, el.Click(ctx))
	assert.Equal(t, "Clicked!", resultText(t, p))

	_, err = p.Query(ctx, "#missing")
	assert.ErrorIs(t, err, entity.ErrElementNotFound)
}

func TestPage_MouseClick(t *testing.T) {
	p := openPage(t, InteractiveHTML)

	require.NoError(t, p.MouseClick(context.Background(), geometry.Point{X: 60, Y: 30}))
	assert.Equal(t, "Clicked!", resultText(t, p))
}

func TestPage_PressKeys(t *testing.T) {
	p := openPage(t, InteractiveHTML)
	ctx := context.Background()

	require.NoError(t, p.PressKeys(ctx, "Control+a"))
	assert.Equal(t, "Control+a", resultText(t, p))

	assert.ErrorIs(t, p.PressKeys(ctx, "Hyper+x"), entity.ErrInvalidArguments)
}

func TestElement_FillAndSelect(t *testing.T) {
	p := openPage(t, FormHTML)
	ctx := context.Background()

	user, err := p.Query(ctx, "#username")
	require.NoError(t, err)
	require.NoError(t, user.Fill(ctx, "alice"))

	var value string
	require.NoError(t, p.Eval(ctx, `() => document.getElementById('username').value`, &value))
	assert.Equal(t, "alice", value)

	sel, err := p.Query(ctx, "#country")
	require.NoError(t, err)
	opts, err := sel.Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, entity.DropdownOption{Index: 2, Text: "Japan", Value: "jp", Selected: true}, opts[2])

	require.NoError(t, sel.SelectOption(ctx, "Germany"))
	require.NoError(t, sel.SelectOption(ctx, "fr"))
	require.NoError(t, p.Eval(ctx, `() => document.getElementById('country').value`, &value))
	assert.Equal(t, "fr", value)

	assert.ErrorIs(t, sel.SelectOption(ctx, "Atlantis"), entity.ErrElementNotFound)
}

func TestPage_Frames(t *testing.T) {
	p := openPage(t, FrameHTML)
	ctx := context.Background()
	require.NoError(t, p.WaitIdle(ctx, 2*time.Second))

	var frames []output.FramePort
	require.Eventually(t, func() bool {
		var err error
		frames, err = p.Frames(ctx)
		return err == nil && len(frames) == 2
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, "inner", frames[0].Name())
	assert.Equal(t, "nested", frames[1].Name())
	_, err := frames[1].Query(ctx, "#deep")
	assert.NoError(t, err)

	f, err := p.FrameByElement(ctx, `iframe[name="inner"]`)
	require.NoError(t, err)
	_, err = f.Query(ctx, "#inside")
	assert.NoError(t, err)

	_, err = p.FrameByElement(ctx, "#nope")
	assert.ErrorIs(t, err, entity.ErrFrameNotFound)
}

func TestPage_Cookies(t *testing.T) {
	p := openPage(t, BasicHTML)
	ctx := context.Background()
	info, err := p.Info(ctx)
	require.NoError(t, err)

	require.NoError(t, p.SetCookie(ctx, entity.Cookie{Name: "session", Value: "abc", URL: info.URL, Path: "/"}))
	cookies, err := p.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)

	require.NoError(t, p.ClearCookies(ctx))
	cookies, err = p.Cookies(ctx)
	require.NoError(t, err)
	assert.Empty(t, cookies)
}

func TestPage_ScreenshotAndPDF(t *testing.T) {
	p := openPage(t, BasicHTML)
	ctx := context.Background()

	shot, err := p.Screenshot(ctx, entity.ViewportScreenshot())
	require.NoError(t, err)
	assert.NotEmpty(t, shot.Data)
	assert.Equal(t, "jpeg", shot.Format)
	assert.LessOrEqual(t, shot.Width, defaultMaxWidth)

	pdf, err := p.PDF(ctx, entity.DefaultPDFOptions())
	require.NoError(t, err)
	assert.Greater(t, len(pdf), 100)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestPage_EmulateNetwork(t *testing.T) {
	p := openPage(t, BasicHTML)

	n := entity.DefaultNetworkConditions()
	n.Latency = 20
	assert.NoError(t, p.EmulateNetwork(context.Background(), n))
}
