package output

import (
	"context"
	"time"

	"browser-automation/internal/domain/entity"
	"browser-automation/internal/domain/geometry"
)

// BrowserPort owns the browser process or CDP connection.
type BrowserPort interface {
	NewPage(ctx context.Context) (PagePort, error)
	Version(ctx context.Context) (string, error)
	Close()
}

// ExecutionContext is where DOM queries and scripts run: the top-level page
// or the frame currently selected in the session.
type ExecutionContext interface {
	// Eval runs a JS function expression and decodes its return value into result.
	// result may be nil when the value is not needed.
	Eval(ctx context.Context, js string, result any, args ...any) error
	// Query returns the first element matching selector or entity.ErrElementNotFound.
	Query(ctx context.Context, selector string) (ElementPort, error)
	HTML(ctx context.Context) (string, error)
}

// FramePort is a child frame of a page.
type FramePort interface {
	ExecutionContext
	Name() string
}

// PagePort is one tab. Pointer and keyboard input always target the page,
// never a frame.
type PagePort interface {
	ExecutionContext

	Info(ctx context.Context) (*entity.PageInfo, error)
	// Navigate waits for DOMContentLoaded within the deadline carried by ctx.
	Navigate(ctx context.Context, url string) error
	// WaitIdle waits until the network has been quiet, bounded by timeout.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Reload(ctx context.Context) error
	Activate(ctx context.Context) error
	Close(ctx context.Context) error

	MouseMove(ctx context.Context, p geometry.Point) error
	MouseDown(ctx context.Context) error
	MouseUp(ctx context.Context) error
	MouseClick(ctx context.Context, p geometry.Point) error
	MouseWheel(ctx context.Context, dx, dy float64) error
	// TypeText inserts text at the current focus.
	TypeText(ctx context.Context, text string) error
	// PressKeys presses a key combination such as "Enter" or "Control+a".
	PressKeys(ctx context.Context, combo string) error

	Screenshot(ctx context.Context, opts entity.ScreenshotOptions) (*entity.Screenshot, error)
	PDF(ctx context.Context, opts entity.PDFOptions) ([]byte, error)

	Cookies(ctx context.Context) ([]entity.Cookie, error)
	SetCookie(ctx context.Context, cookie entity.Cookie) error
	ClearCookies(ctx context.Context) error

	EmulateNetwork(ctx context.Context, conditions entity.NetworkConditions) error

	// Frames lists child frames depth-first in document order, nested frames
	// included. The main frame is not listed.
	Frames(ctx context.Context) ([]FramePort, error)
	// FrameByElement resolves the content frame of the iframe matched by selector.
	FrameByElement(ctx context.Context, selector string) (FramePort, error)
}

// ElementPort is a live element handle.
type ElementPort interface {
	Click(ctx context.Context) error
	Focus(ctx context.Context) error
	// Fill clears the current value and writes text.
	Fill(ctx context.Context, text string) error
	// Describe returns the lower-case tag name and attributes.
	Describe(ctx context.Context) (tag string, attributes map[string]string, err error)
	// Box is the element rect in viewport space.
	Box(ctx context.Context) (geometry.Rect, error)
	Options(ctx context.Context) ([]entity.DropdownOption, error)
	SelectOption(ctx context.Context, text string) error
}
