// Package ocr extracts text from screenshots with the tesseract CLI.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"browser-automation/internal/application/port/output"
)

var _ output.OCRPort = (*Tesseract)(nil)

var ErrDisabled = errors.New("ocr disabled")

type Tesseract struct {
	command string
	args    []string
}

// NewTesseract runs `<command> stdin stdout` per image. An empty command
// yields an extractor that always reports ErrDisabled.
func NewTesseract(command string) *Tesseract {
	return &Tesseract{command: command, args: []string{"stdin", "stdout"}}
}

func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	if t.command == "" {
		return "", ErrDisabled
	}
	if len(image) == 0 {
		return "", nil
	}

	cmd := exec.CommandContext(ctx, t.command, t.args...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", t.command, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
