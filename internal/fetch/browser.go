package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the minimum extracted text length for a static fetch to count.
// Shorter pages are likely built by JavaScript and are worth rendering.
const MinContentLength = 500

// DefaultSettleTime is how long a rendered page gets to run its scripts after the body is ready.
const DefaultSettleTime = 2 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns a page's HTML after its scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Browser renders pages in headless Chrome. Chrome or Chromium must be installed.
type Browser struct {
	Timeout time.Duration
	Settle  time.Duration
	// ExecPath overrides Chrome discovery when set.
	ExecPath string

	logger *zap.Logger
}

// NewBrowser creates a headless renderer. A zero timeout uses DefaultTimeout.
func NewBrowser(timeout time.Duration, logger *zap.Logger) *Browser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		Timeout: timeout,
		Settle:  DefaultSettleTime,
		logger:  logger.Named("browser"),
	}
}

// Render navigates to url, waits for the body and the settle time, and returns the DOM as HTML.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	start := time.Now()
	b.logger.Debug("rendering page", zap.String("url", url))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		b.logger.Warn("browser rendering failed", zap.String("url", url), zap.Error(err))
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	b.logger.Debug("page rendered",
		zap.String("url", url),
		zap.Int("bytes", len(html)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return html, nil
}
