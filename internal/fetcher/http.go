package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/sells-group/orglink/internal/resilience"
)

// defaultMaxPageBytes bounds the size of a fetched page.
const defaultMaxPageBytes = 8 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	Interval   time.Duration // minimum spacing between requests
	MaxRetries int
	// MaxPageBytes rejects larger response bodies. Zero means 8 MiB.
	MaxPageBytes int64
}

// AdaptiveLimiter spaces requests at a fixed polite interval and slows down
// when the remote site answers 429. Successful requests recover the rate by
// 20% per request, never above the initial rate.
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates a limiter allowing one request per interval.
// A zero interval disables limiting.
func NewAdaptiveLimiter(interval time.Duration) *AdaptiveLimiter {
	r := rate.Inf
	if interval > 0 {
		r = rate.Every(interval)
	}
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(r, 1),
		initialRate: r,
		minRate:     r / 4,
		currentRate: r,
	}
}

// Wait blocks until the limiter allows a request.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess moves the rate 20% back toward the initial rate.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentRate == rate.Inf {
		return
	}
	a.currentRate = min(a.currentRate*1.2, a.initialRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate, down to a quarter of the initial rate.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentRate == rate.Inf {
		return
	}
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("fetcher: reducing request rate after 429",
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// HTTPFetcher implements PageFetcher with rate limiting and retries.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *AdaptiveLimiter
}

var _ PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "orglink/1.0"
	}
	if opts.MaxPageBytes <= 0 {
		opts.MaxPageBytes = defaultMaxPageBytes
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: NewAdaptiveLimiter(opts.Interval),
	}
}

// Fetch downloads rawURL and returns the body as UTF-8 text. Pages served in
// Shift_JIS or EUC-JP are converted using the declared or sniffed charset.
// Throttling, 5xx responses and network timeouts are retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	policy := resilience.PolicyFor(f.opts.MaxRetries, f.opts.Interval)
	policy.OnRetry = resilience.LogRetries("fetch page", rawURL)

	page, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (string, error) {
		return f.fetchOnce(ctx, rawURL)
	})
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	return page, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		f.limiter.OnRateLimit()
	}
	if resp.StatusCode != http.StatusOK {
		return "", resilience.StatusError(resp.StatusCode, rawURL)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxPageBytes+1))
	if err != nil {
		return "", eris.Wrap(err, "read body")
	}
	// Oversize bodies fail rather than parse truncated.
	if int64(len(raw)) > f.opts.MaxPageBytes {
		return "", eris.Errorf("page exceeds %d bytes", f.opts.MaxPageBytes)
	}
	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", eris.Wrap(err, "detect charset")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", eris.Wrap(err, "decode body")
	}

	f.limiter.OnSuccess()
	return string(data), nil
}
