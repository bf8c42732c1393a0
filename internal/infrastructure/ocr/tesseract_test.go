package ocr

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTesseract_Disabled(t *testing.T) {
	_, err := NewTesseract("").ExtractText(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTesseract_EmptyImage(t *testing.T) {
	text, err := NewTesseract("tesseract").ExtractText(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestTesseract_PipesImageThroughCommand(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	ocr := &Tesseract{command: "cat"}

	text, err := ocr.ExtractText(context.Background(), []byte("  Hello OCR \n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello OCR", text)
}

func TestTesseract_CommandFailure(t *testing.T) {
	ocr := NewTesseract("definitely-not-a-real-ocr-binary")

	_, err := ocr.ExtractText(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	assert.Error(t, err)
}
