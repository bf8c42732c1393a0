package rod

import (
	"context"
	"fmt"
	"io"

	"browser-automation/internal/domain/entity"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// printRequest maps print options onto Page.printToPDF. Explicit width and
// height win over a named format; named formats are portrait and are turned
// for landscape.
func printRequest(o entity.PDFOptions) (*proto.PagePrintToPDF, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	req := &proto.PagePrintToPDF{
		Landscape:           o.Landscape,
		DisplayHeaderFooter: o.DisplayHeaderFooter,
		PrintBackground:     o.PrintBackground,
		PageRanges:          o.PageRanges,
		HeaderTemplate:      o.HeaderTemplate,
		FooterTemplate:      o.FooterTemplate,
		PreferCSSPageSize:   o.PreferCSSPageSize,
	}
	if o.Scale > 0 {
		req.Scale = gson.Num(o.Scale)
	}

	if o.Width != "" || o.Height != "" {
		if w, _ := entity.LengthInches(o.Width); w > 0 {
			req.PaperWidth = gson.Num(w)
		}
		if h, _ := entity.LengthInches(o.Height); h > 0 {
			req.PaperHeight = gson.Num(h)
		}
	} else if w, h, ok := entity.PaperSize(o.Format); ok {
		if o.Landscape {
			w, h = h, w
		}
		req.PaperWidth, req.PaperHeight = gson.Num(w), gson.Num(h)
	}

	margins := []struct {
		value string
		dst   **float64
	}{
		{o.Margin.Top, &req.MarginTop},
		{o.Margin.Right, &req.MarginRight},
		{o.Margin.Bottom, &req.MarginBottom},
		{o.Margin.Left, &req.MarginLeft},
	}
	for _, m := range margins {
		if m.value == "" {
			continue
		}
		v, _ := entity.LengthInches(m.value)
		*m.dst = gson.Num(v)
	}
	return req, nil
}

func (p *Page) PDF(ctx context.Context, opts entity.PDFOptions) ([]byte, error) {
	req, err := printRequest(opts)
	if err != nil {
		return nil, err
	}
	r, err := p.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, fmt.Errorf("print to pdf failed: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading pdf stream: %w", err)
	}
	return data, nil
}
