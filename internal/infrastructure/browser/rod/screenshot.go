package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"browser-automation/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

func (p *Page) Screenshot(ctx context.Context, opts entity.ScreenshotOptions) (*entity.Screenshot, error) {
	if opts.Format == "" {
		opts.Format = entity.ScreenshotPNG
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = p.cfg.ScreenshotMaxWidth
	}

	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	if opts.Format == entity.ScreenshotJPEG {
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		req.Quality = gson.Int(quality(opts.Quality))
	}

	raw, err := p.page.Context(ctx).Screenshot(opts.FullPage, req)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return encodeScreenshot(raw, opts)
}

// encodeScreenshot decodes a capture, scales it down to opts.MaxWidth and
// re-encodes it in the requested format.
func encodeScreenshot(raw []byte, opts entity.ScreenshotOptions) (*entity.Screenshot, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	resized := false
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
		resized = true
	}

	out := &entity.Screenshot{
		Data:   raw,
		Format: string(opts.Format),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if !resized {
		return out, nil
	}

	data, err := encode(img, opts)
	if err != nil {
		return nil, err
	}
	out.Data = data
	return out, nil
}

func encode(img image.Image, opts entity.ScreenshotOptions) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error
	if opts.Format == entity.ScreenshotJPEG {
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality(opts.Quality)))
	} else {
		err = imaging.Encode(buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("%s encode failed: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}

func quality(q int) int {
	if q <= 0 || q > 100 {
		return 75
	}
	return q
}
