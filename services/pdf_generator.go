package services

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 at 96 CSS pixels per inch
const (
	a4WidthPx  = 794
	a4HeightPx = 1123
)

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // A4, letter
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns A4 with the 2cm margins the court forms use
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       57,
		MarginBottom:    57,
		MarginLeft:      57,
		MarginRight:     57,
	}
}

func (o PDFOptions) paperInches() (float64, float64) {
	w, h := 8.27, 11.69
	if o.PageSize == "letter" {
		w, h = 8.5, 11.0
	}
	if o.PageOrientation == "landscape" {
		w, h = h, w
	}
	return w, h
}

// Renderer turns a complete HTML document into printable output
type Renderer interface {
	PDF(ctx context.Context, html string, opts PDFOptions) ([]byte, error)
	Thumbnail(ctx context.Context, html string, width int) ([]byte, error)
}

// ChromeRenderer renders with headless Chrome. Each call starts its own browser so calls
// can run in parallel.
type ChromeRenderer struct {
	ChromePath string
}

// NewChromeRenderer uses the given Chrome binary, or the default lookup when empty
func NewChromeRenderer(chromePath string) *ChromeRenderer {
	return &ChromeRenderer{ChromePath: chromePath}
}

func (r *ChromeRenderer) browser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// setContent loads HTML into the blank page
func setContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		frameTree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
	})
}

// PDF renders HTML to PDF
func (r *ChromeRenderer) PDF(ctx context.Context, html string, options PDFOptions) ([]byte, error) {
	ctx, cancel := r.browser(ctx)
	defer cancel()

	paperWidth, paperHeight := options.paperInches()
	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(float64(options.MarginTop) / 72.0).
				WithMarginBottom(float64(options.MarginBottom) / 72.0).
				WithMarginLeft(float64(options.MarginLeft) / 72.0).
				WithMarginRight(float64(options.MarginRight) / 72.0).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// Thumbnail renders the first A4 page as a PNG scaled to width pixels
func (r *ChromeRenderer) Thumbnail(ctx context.Context, html string, width int) ([]byte, error) {
	if width <= 0 {
		width = 240
	}
	ctx, cancel := r.browser(ctx)
	defer cancel()

	scale := float64(width) / a4WidthPx
	var png []byte
	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(a4WidthPx, a4HeightPx, chromedp.EmulateScale(scale)),
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.CaptureScreenshot(&png),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture thumbnail: %w", err)
	}
	return png, nil
}
