// Package browser drives a headless Chrome instance through chromedp and
// exposes it as a page renderer for the page-based listing sources.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"rental-aggregator/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a browser session.
type Options struct {
	ChromeBin   string
	RenderWait  time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// Browser is a single shared headless Chrome. Renders are serialised.
type Browser struct {
	opts   Options
	logger *utils.Logger
	retry  *utils.RetryConfig

	mu          sync.Mutex
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
	closed      bool
}

// Launch starts Chrome and waits until it accepts commands.
func Launch(ctx context.Context, opts Options, logger *utils.Logger) (*Browser, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}

	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] using binary: %s", displayBin(chromeBin))

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	// Suppress chromedp log noise
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	return &Browser{
		opts:   opts,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelCtx:   cancelCtx,
	}, nil
}

// Render navigates a fresh tab to url, waits for client-side rendering,
// scrolls to the bottom scrolls times and returns the page markup.
func (b *Browser) Render(ctx context.Context, url string, scrolls int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", errors.New("browser: closed")
	}

	var html string
	err := b.retry.Do(ctx, "render "+url, func() error {
		tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
		defer cancelTimeout()

		// Tie the tab to the caller's context as well.
		stop := context.AfterFunc(ctx, cancelTimeout)
		defer stop()

		actions := []chromedp.Action{
			chromedp.Navigate(url),
			chromedp.Sleep(b.opts.RenderWait),
		}
		for i := 0; i < scrolls; i++ {
			actions = append(actions,
				chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
				chromedp.Sleep(b.opts.RenderWait/2),
			)
		}
		actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

		return chromedp.Run(tabCtx, actions...)
	})
	if err != nil {
		return "", fmt.Errorf("browser: %w", err)
	}
	return html, nil
}

// Close shuts Chrome down. It is safe to call more than once.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.cancelCtx()
	b.cancelAlloc()
}

func displayBin(bin string) string {
	if bin == "" {
		return "(chromedp default lookup)"
	}
	return bin
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
