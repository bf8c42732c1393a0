package output

import "context"

// OCRPort extracts text from an image. Callers treat failures as absent text.
type OCRPort interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}
