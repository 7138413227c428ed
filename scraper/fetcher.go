package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"rental-aggregator/utils"
)

const (
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	feedAccept     = "application/rss+xml, application/xml;q=0.9, */*;q=0.8"
	acceptLanguage = "en-CA,en;q=0.9"

	maxFeedBytes = 8 << 20
)

// FetcherOptions configures FeedFetcher.
type FetcherOptions struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryWait   time.Duration
	RateLimitMs int
}

// FeedFetcher performs feed GETs with a per-request timeout, bounded retries
// and request spacing. Failures degrade to an empty document.
type FeedFetcher struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *utils.Logger
}

// NewFeedFetcher creates a FeedFetcher. Redirects are followed.
func NewFeedFetcher(opts FetcherOptions, logger *utils.Logger) *FeedFetcher {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = opts.MaxRetries
	if opts.RetryWait > 0 {
		rc.RetryWaitMin = opts.RetryWait
		rc.RetryWaitMax = 8 * opts.RetryWait
	}
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn("[rss] retry %d for %s", attempt, req.URL.Redacted())
		}
	}

	limit := rate.Inf
	if opts.RateLimitMs > 0 {
		limit = rate.Every(time.Duration(opts.RateLimitMs) * time.Millisecond)
	}

	return &FeedFetcher{
		client:  rc,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Fetch implements FeedSource. Any transport error or non-2xx status is
// logged under label and reported as an empty document.
func (f *FeedFetcher) Fetch(ctx context.Context, url, label string) string {
	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.Error("[rss:%s] %v", label, err)
		return ""
	}
	return body
}

func (f *FeedFetcher) get(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", feedAccept)
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}
