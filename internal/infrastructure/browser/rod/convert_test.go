package rod

import (
	"bytes"
	"image/color"
	"testing"

	"browser-automation/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod/lib/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Headless)
	assert.Zero(t, cfg.SlowMotion)
	assert.Equal(t, defaultTimeout, cfg.Timeout)
	assert.False(t, cfg.NoSandbox, "Should be secure by default")
	assert.False(t, cfg.DisableSecurityFeatures, "Should be secure by default")
	assert.Equal(t, defaultMaxWidth, cfg.ScreenshotMaxWidth)
	assert.Empty(t, cfg.ControlURL)
}

func TestParseCombo(t *testing.T) {
	tests := []struct {
		combo string
		mods  []input.Key
		key   input.Key
	}{
		{"Enter", nil, input.Enter},
		{"enter", nil, input.Enter},
		{"a", nil, input.Key('a')},
		{"A", nil, input.Key('A')},
		{"Control+a", []input.Key{input.ControlLeft}, input.Key('a')},
		{"Ctrl+Shift+Tab", []input.Key{input.ControlLeft, input.ShiftLeft}, input.Tab},
		{"Meta+ArrowLeft", []input.Key{input.MetaLeft}, input.ArrowLeft},
		{"F5", nil, input.F5},
		{"Shift", nil, input.ShiftLeft},
	}
	for _, tt := range tests {
		t.Run(tt.combo, func(t *testing.T) {
			mods, key, err := ParseCombo(tt.combo)
			require.NoError(t, err)
			assert.Equal(t, tt.mods, mods)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestParseCombo_Invalid(t *testing.T) {
	for _, combo := range []string{"", "Hyper+a", "Control+NotAKey", "é"} {
		t.Run(combo, func(t *testing.T) {
			_, _, err := ParseCombo(combo)
			assert.ErrorIs(t, err, entity.ErrInvalidArguments)
		})
	}
}

func TestPrintRequest_Defaults(t *testing.T) {
	req, err := printRequest(entity.DefaultPDFOptions())
	require.NoError(t, err)

	require.NotNil(t, req.PaperWidth)
	require.NotNil(t, req.PaperHeight)
	assert.InDelta(t, 8.27, *req.PaperWidth, 1e-9)
	assert.InDelta(t, 11.69, *req.PaperHeight, 1e-9)
	assert.True(t, req.PrintBackground)
	require.NotNil(t, req.MarginTop)
	assert.InDelta(t, 1/2.54, *req.MarginTop, 1e-9)
	assert.Nil(t, req.Scale)
}

func TestPrintRequest_LandscapeTurnsFormat(t *testing.T) {
	opts := entity.DefaultPDFOptions()
	opts.Format = "letter"
	opts.Landscape = true

	req, err := printRequest(opts)
	require.NoError(t, err)
	assert.True(t, req.Landscape)
	assert.InDelta(t, 11, *req.PaperWidth, 1e-9)
	assert.InDelta(t, 8.5, *req.PaperHeight, 1e-9)
}

func TestPrintRequest_ExplicitSize(t *testing.T) {
	opts := entity.PDFOptions{Format: "A4", Width: "96px", Height: "2in", Scale: 0.5, Margin: entity.PDFMargin{Left: "25.4mm"}}

	req, err := printRequest(opts)
	require.NoError(t, err)
	assert.InDelta(t, 1, *req.PaperWidth, 1e-9)
	assert.InDelta(t, 2, *req.PaperHeight, 1e-9)
	assert.InDelta(t, 0.5, *req.Scale, 1e-9)
	assert.InDelta(t, 1, *req.MarginLeft, 1e-9)
	assert.Nil(t, req.MarginTop)
}

func TestPrintRequest_Invalid(t *testing.T) {
	_, err := printRequest(entity.PDFOptions{Format: "B7"})
	assert.ErrorIs(t, err, entity.ErrInvalidArguments)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, imaging.Encode(buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

func TestEncodeScreenshot_KeepsSmallCapture(t *testing.T) {
	raw := pngOf(t, 200, 100)

	shot, err := encodeScreenshot(raw, entity.ScreenshotOptions{Format: entity.ScreenshotPNG, MaxWidth: 1024})
	require.NoError(t, err)
	assert.Equal(t, raw, shot.Data)
	assert.Equal(t, 200, shot.Width)
	assert.Equal(t, 100, shot.Height)
	assert.Equal(t, "png", shot.Format)
}

func TestEncodeScreenshot_Resize(t *testing.T) {
	raw := pngOf(t, 2048, 1000)

	shot, err := encodeScreenshot(raw, entity.ScreenshotOptions{Format: entity.ScreenshotJPEG, Quality: 60, MaxWidth: 1024})
	require.NoError(t, err)
	assert.Equal(t, 1024, shot.Width)
	assert.Equal(t, 500, shot.Height)

	img, err := imaging.Decode(bytes.NewReader(shot.Data))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
}

func TestEncodeScreenshot_Garbage(t *testing.T) {
	_, err := encodeScreenshot([]byte("not an image"), entity.ScreenshotOptions{})
	assert.Error(t, err)
}
