package action

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"browser-automation/internal/domain/entity"
)

const (
	minPDFBytes     = 100
	suspectPDFBytes = 1000
)

type ExtractContentAction struct {
	d *Deps
}

func NewExtractContentAction(d *Deps) *ExtractContentAction {
	return &ExtractContentAction{d: d}
}

func (a *ExtractContentAction) Name() entity.ActionName { return entity.ActionExtractContent }
func (a *ExtractContentAction) Description() string     { return "Extracts the readable text of the page" }
func (a *ExtractContentAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"goal": prop("string", "What the caller is looking for, echoed in the result"),
	})
}

func (a *ExtractContentAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Goal string `json:"goal"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	ec, err := a.d.Session.ExecutionContext()
	if err != nil {
		return nil, err
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}

	markup, err := ec.HTML(ctx)
	if err != nil {
		return nil, entity.Upstream("read page html", err)
	}
	content := map[string]any{"text": a.d.Text.Text(markup)}
	if info, err := page.Info(ctx); err == nil {
		content["url"] = info.URL
		content["title"] = info.Title
	}
	if ocr := a.ocr(ctx); ocr != "" {
		content["ocr_text"] = ocr
	}

	msg := "Extracted content from page"
	if input.Goal != "" {
		content["goal"] = input.Goal
		msg += fmt.Sprintf(" (Goal: %s)", input.Goal)
	}
	return &entity.ActionOutput{Message: msg, Content: content}, nil
}

// ocr reads the text of the current viewport. Failures yield "".
func (a *ExtractContentAction) ocr(ctx context.Context) string {
	if a.d.OCR == nil {
		return ""
	}
	page, err := a.d.page()
	if err != nil {
		return ""
	}
	shot, err := page.Screenshot(ctx, entity.ScreenshotOptions{Format: entity.ScreenshotPNG})
	if err != nil {
		a.d.Logger.Warn("Screenshot for OCR failed", "error", err)
		return ""
	}
	text, err := a.d.OCR.ExtractText(ctx, shot.Data)
	if err != nil {
		a.d.Logger.Warn("OCR failed", "error", err)
		return ""
	}
	return text
}

type TakeScreenshotAction struct {
	d *Deps
}

func NewTakeScreenshotAction(d *Deps) *TakeScreenshotAction {
	return &TakeScreenshotAction{d: d}
}

func (a *TakeScreenshotAction) Name() entity.ActionName { return entity.ActionTakeScreenshot }
func (a *TakeScreenshotAction) Description() string     { return "Captures a full-page screenshot" }
func (a *TakeScreenshotAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"full_page": prop("boolean", "Capture the whole page instead of the viewport, default true"),
	})
}

func (a *TakeScreenshotAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		FullPage *bool `json:"full_page"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	shot, err := page.Screenshot(ctx, entity.ScreenshotOptions{
		Format:   entity.ScreenshotPNG,
		FullPage: firstOf(true, input.FullPage),
	})
	if err != nil {
		return nil, entity.Upstream("screenshot", err)
	}
	return &entity.ActionOutput{
		Message:    "Screenshot captured",
		Screenshot: base64.StdEncoding.EncodeToString(shot.Data),
		Content:    map[string]any{"format": shot.Format, "width": shot.Width, "height": shot.Height},
	}, nil
}

// pdfKeys maps every accepted spelling to the PDFOptions field name.
var pdfKeys = map[string]string{
	"path":                  "path",
	"scale":                 "scale",
	"displayHeaderFooter":   "displayHeaderFooter",
	"display_header_footer": "displayHeaderFooter",
	"headerTemplate":        "headerTemplate",
	"header_template":       "headerTemplate",
	"footerTemplate":        "footerTemplate",
	"footer_template":       "footerTemplate",
	"printBackground":       "printBackground",
	"print_background":      "printBackground",
	"landscape":             "landscape",
	"pageRanges":            "pageRanges",
	"page_ranges":           "pageRanges",
	"format":                "format",
	"width":                 "width",
	"height":                "height",
	"preferCSSPageSize":     "preferCSSPageSize",
	"prefer_css_page_size":  "preferCSSPageSize",
	"margin":                "margin",
}

// ParsePDFOptions reads flat or {"options": {...}} arguments over the
// defaults. Unknown keys are returned, not rejected.
func ParsePDFOptions(args string) (entity.PDFOptions, []string, error) {
	opts := entity.DefaultPDFOptions()
	var raw map[string]json.RawMessage
	if err := decode(args, &raw); err != nil {
		return opts, nil, err
	}
	if nested, ok := raw["options"]; ok && len(raw) == 1 {
		raw = nil
		if err := decode(string(nested), &raw); err != nil {
			return opts, nil, err
		}
	}

	known := make(map[string]json.RawMessage, len(raw))
	var unknown []string
	for k, v := range raw {
		if field, ok := pdfKeys[k]; ok {
			known[field] = v
			continue
		}
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)

	body, err := json.Marshal(known)
	if err != nil {
		return opts, unknown, fmt.Errorf("encode pdf options: %v: %w", err, entity.ErrInvalidArguments)
	}
	if err := decode(string(body), &opts); err != nil {
		return opts, unknown, err
	}
	return opts, unknown, opts.Validate()
}

// PDFAction prints the page. get_page_pdf always returns the bytes,
// save_pdf returns them only when no path is given.
type PDFAction struct {
	d      *Deps
	inline bool
}

func NewPDFAction(d *Deps, inline bool) *PDFAction {
	return &PDFAction{d: d, inline: inline}
}

func (a *PDFAction) Name() entity.ActionName {
	if a.inline {
		return entity.ActionGetPagePDF
	}
	return entity.ActionSavePDF
}

func (a *PDFAction) Description() string {
	if a.inline {
		return "Prints the page to PDF and returns it base64 encoded"
	}
	return "Prints the page to PDF, optionally writing it to a file"
}

func (a *PDFAction) Parameters() map[string]interface{} {
	margin := object(map[string]interface{}{
		"top":    prop("string", "CSS length such as 1cm"),
		"right":  prop("string", "CSS length"),
		"bottom": prop("string", "CSS length"),
		"left":   prop("string", "CSS length"),
	})
	return object(map[string]interface{}{
		"path":                  prop("string", "File to write the PDF to"),
		"scale":                 prop("number", "Rendering scale"),
		"display_header_footer": prop("boolean", "Render header and footer templates"),
		"header_template":       prop("string", "HTML header template"),
		"footer_template":       prop("string", "HTML footer template"),
		"print_background":      prop("boolean", "Print background graphics, default true"),
		"landscape":             prop("boolean", "Landscape orientation"),
		"page_ranges":           prop("string", "Pages to print such as 1-5, 8"),
		"format":                prop("string", "A4, Letter, Legal, Tabloid, A3 or A5; default A4"),
		"width":                 prop("string", "Paper width, overrides format"),
		"height":                prop("string", "Paper height, overrides format"),
		"prefer_css_page_size":  prop("boolean", "Prefer the page size declared in CSS"),
		"margin":                margin,
	})
}

func (a *PDFAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	opts, unknown, err := ParsePDFOptions(args)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		a.d.Logger.Warn("Ignoring unsupported PDF options", "keys", unknown)
	}
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	a.d.Session.WaitIdle(ctx, page, a.d.Timeouts.PDFIdle)

	data, err := page.PDF(ctx, opts)
	if err != nil {
		return nil, entity.Upstream("print pdf", err)
	}
	if len(data) < minPDFBytes {
		return nil, entity.Upstream("print pdf", fmt.Errorf("generated PDF is empty (%d bytes)", len(data)))
	}

	content := map[string]any{"size_bytes": len(data)}
	if opts.Path != "" {
		if err := writeFile(opts.Path, data); err != nil {
			return nil, err
		}
		content["path"] = opts.Path
	}
	if a.inline || opts.Path == "" {
		content["pdf_base64"] = base64.StdEncoding.EncodeToString(data)
	}

	msg := fmt.Sprintf("PDF generated (%d bytes)", len(data))
	if opts.Path != "" {
		msg = fmt.Sprintf("PDF saved to %s (%d bytes)", opts.Path, len(data))
	}
	if len(data) < suspectPDFBytes {
		a.d.Logger.Warn("Generated PDF is unusually small", "size_bytes", len(data))
		msg += ". Warning: the PDF is unusually small and may be blank"
	}
	return &entity.ActionOutput{Message: msg, Content: content}, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
