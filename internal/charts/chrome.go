package charts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"salespulse/internal/infrastructure"
)

// Renderer rasterizes a figure to PNG.
type Renderer interface {
	Render(ctx context.Context, fig Figure) ([]byte, error)
}

// ChromeRenderer screenshots the figure's SVG in headless Chrome.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewChromeRenderer creates a renderer. An empty execPath lets chromedp find Chrome.
func NewChromeRenderer(execPath string, timeout time.Duration, logger *slog.Logger) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeRenderer{
		execPath: execPath,
		timeout:  timeout,
		logger:   infrastructure.WithComponent(logger, "chrome_renderer"),
	}
}

// Render loads the SVG as a data URL and takes a full-page PNG screenshot.
// Each call starts its own browser.
func (r *ChromeRenderer) Render(ctx context.Context, fig Figure) ([]byte, error) {
	svg, err := SVG(fig)
	if err != nil {
		return nil, err
	}
	w, h := fig.size()

	page := fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="utf-8"></head><body style="margin:0">%s</body></html>`, svg)
	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(page))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.WindowSize(w, h),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var png []byte
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(w), int64(h)),
		chromedp.Navigate(url),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	); err != nil {
		return nil, fmt.Errorf("screenshot %s: %w", fig.Name, err)
	}

	r.logger.DebugContext(ctx, "figure rendered",
		slog.String("figure", fig.Name),
		slog.Int("bytes", len(png)),
		slog.Duration("duration", time.Since(start)))

	return png, nil
}
