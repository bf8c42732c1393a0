package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// PageInfo is the identity of a page at a point in time.
type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// PageDocument is the raw material the intervention detectors scan.
type PageDocument struct {
	URL   string
	Title string
	HTML  string
	Text  string
}

// TabInfo describes one open tab.
type TabInfo struct {
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Current bool   `json:"current"`
}

type ScreenshotFormat string

const (
	ScreenshotJPEG ScreenshotFormat = "jpeg"
	ScreenshotPNG  ScreenshotFormat = "png"
)

type ScreenshotOptions struct {
	Format   ScreenshotFormat
	Quality  int
	FullPage bool
	// MaxWidth down-scales wider captures; 0 keeps the original size.
	MaxWidth int
}

// ViewportScreenshot is the capture taken with every state refresh.
func ViewportScreenshot() ScreenshotOptions {
	return ScreenshotOptions{Format: ScreenshotJPEG, Quality: 60}
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Cookie mirrors the subset of CDP cookie fields callers may set or read.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	URL      string  `json:"url,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// NetworkConditions configures CDP network emulation. Throughput is in
// bytes per second, -1 disables throttling.
type NetworkConditions struct {
	Offline            bool    `json:"offline"`
	Latency            float64 `json:"latency"`
	DownloadThroughput float64 `json:"downloadThroughput"`
	UploadThroughput   float64 `json:"uploadThroughput"`
	ConnectionType     string  `json:"connectionType,omitempty"`
}

// DefaultNetworkConditions leaves the network untouched.
func DefaultNetworkConditions() NetworkConditions {
	return NetworkConditions{DownloadThroughput: -1, UploadThroughput: -1}
}

// Describe renders the conditions as "offline mode, 40ms latency, 1.50 MB/s download".
func (n NetworkConditions) Describe() string {
	var parts []string
	if n.Offline {
		parts = append(parts, "offline mode")
	}
	if n.Latency > 0 {
		parts = append(parts, fmt.Sprintf("%gms latency", n.Latency))
	}
	if n.DownloadThroughput > 0 {
		parts = append(parts, formatThroughput(n.DownloadThroughput)+" download")
	}
	if n.UploadThroughput > 0 {
		parts = append(parts, formatThroughput(n.UploadThroughput)+" upload")
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, ", ")
}

func formatThroughput(bytesPerSecond float64) string {
	kb := bytesPerSecond / 1024
	if kb > 1024 {
		return fmt.Sprintf("%.2f MB/s", kb/1024)
	}
	return fmt.Sprintf("%.2f KB/s", kb)
}

// PDFMargin values are CSS lengths such as "1cm", "10mm", "0.5in" or "20px".
type PDFMargin struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// PDFOptions is the closed set of print options accepted by save_pdf.
type PDFOptions struct {
	Path                string    `json:"path,omitempty"`
	Scale               float64   `json:"scale,omitempty"`
	DisplayHeaderFooter bool      `json:"displayHeaderFooter"`
	HeaderTemplate      string    `json:"headerTemplate,omitempty"`
	FooterTemplate      string    `json:"footerTemplate,omitempty"`
	PrintBackground     bool      `json:"printBackground"`
	Landscape           bool      `json:"landscape"`
	PageRanges          string    `json:"pageRanges,omitempty"`
	Format              string    `json:"format,omitempty"`
	Width               string    `json:"width,omitempty"`
	Height              string    `json:"height,omitempty"`
	PreferCSSPageSize   bool      `json:"preferCSSPageSize"`
	Margin              PDFMargin `json:"margin"`
}

// DefaultPDFOptions is A4 with backgrounds and 1cm margins.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Format:          "A4",
		PrintBackground: true,
		Margin:          PDFMargin{Top: "1cm", Right: "1cm", Bottom: "1cm", Left: "1cm"},
	}
}

// PaperSizes are the named PDF formats in inches, portrait.
var PaperSizes = map[string][2]float64{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"a3":      {11.69, 16.54},
	"a4":      {8.27, 11.69},
	"a5":      {5.83, 8.27},
}

// PaperSize looks up a format name case-insensitively.
func PaperSize(format string) (width, height float64, ok bool) {
	size, ok := PaperSizes[strings.ToLower(strings.TrimSpace(format))]
	return size[0], size[1], ok
}

var lengthUnits = map[string]float64{
	"in": 1,
	"cm": 1 / 2.54,
	"mm": 1 / 25.4,
	"px": 1.0 / 96,
}

// LengthInches converts a CSS length such as "1cm" or "20px" to inches. A bare
// number is taken as pixels.
func LengthInches(length string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(length))
	if s == "" {
		return 0, nil
	}
	factor := lengthUnits["px"]
	if len(s) > 2 {
		if f, ok := lengthUnits[s[len(s)-2:]]; ok {
			factor, s = f, s[:len(s)-2]
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("length %q: %w", length, ErrInvalidArguments)
	}
	return v * factor, nil
}

// Validate checks the format name and every length.
func (o PDFOptions) Validate() error {
	if o.Format != "" && o.Width == "" && o.Height == "" {
		if _, _, ok := PaperSize(o.Format); !ok {
			return fmt.Errorf("paper format %q: %w", o.Format, ErrInvalidArguments)
		}
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale %g: %w", o.Scale, ErrInvalidArguments)
	}
	for _, l := range []string{o.Width, o.Height, o.Margin.Top, o.Margin.Right, o.Margin.Bottom, o.Margin.Left} {
		if _, err := LengthInches(l); err != nil {
			return err
		}
	}
	return nil
}

// DropdownOption is one <option> of a <select>.
type DropdownOption struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}
