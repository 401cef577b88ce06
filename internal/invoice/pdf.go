package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-server/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultRenderTimeout = 60 * time.Second

	// A4 in inches.
	a4Width  = 8.27
	a4Height = 11.69
)

var renderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "invoice_pdf_render_seconds",
	Help:    "Time spent rendering invoice PDFs in headless Chrome.",
	Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
})

// ChromeRenderer prints invoices to PDF with a short-lived headless Chrome.
// Every render gets its own browser process, which is torn down before
// RenderPDF returns.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
}

func NewChromeRenderer(execPath string, timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &ChromeRenderer{execPath: execPath, timeout: timeout}
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return opts
}

func (r *ChromeRenderer) RenderPDF(ctx context.Context, inv *models.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, errors.New("render pdf: nil invoice")
	}
	html, err := RenderHTML(inv)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { renderSeconds.Observe(time.Since(start).Seconds()) }()

	// A client hanging up does not abort a render that already started.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var ready bool
	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(`document.readyState === "complete"`, &ready),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}
