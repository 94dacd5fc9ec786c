// Package httpx provides the shared HTTP client the source fetchers
// build on: browser-like request headers, proactive per-client
// throttling, bounded response bodies and retry with exponential
// backoff on transient failures.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrUnexpectedStatus indicates an HTTP response with a non-OK status.
var ErrUnexpectedStatus = errors.New("unexpected status code")

const (
	// userAgent mirrors a desktop browser; some venue sites reject
	// clients that do not look like one.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// acceptLanguage prefers Italian so localised listings come back
	// in the language the venue sites publish.
	acceptLanguage = "it-IT,it;q=0.9,en;q=0.8"

	// DefaultTimeout bounds one request attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the number of tries per request,
	// the first one included.
	DefaultMaxAttempts = 3

	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 8 << 20

	// DefaultRequestsPerSecond is the proactive throttle rate. Venue
	// sites are small; stay polite.
	DefaultRequestsPerSecond = 2.0

	// DefaultInitialBackoff and DefaultMaxBackoff bound the retry delay.
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 30 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Timeout           time.Duration
	MaxAttempts       int
	MaxBodyBytes      int64
	RequestsPerSecond float64
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
}

// Client is a polite HTTP client for scraping public listing sites.
type Client struct {
	http           *http.Client
	limiter        *rate.Limiter
	maxAttempts    int
	maxBodyBytes   int64
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a client with the given options.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}

	return &Client{
		http:           &http.Client{Timeout: opts.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		maxAttempts:    opts.MaxAttempts,
		maxBodyBytes:   opts.MaxBodyBytes,
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
	}
}

// Get fetches the URL and returns the response body, retrying
// transient failures with exponential backoff.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.GetWithHeader(ctx, url)
	return body, err
}

// GetWithHeader is Get for callers that also need the response
// headers, e.g. WordPress pagination counters.
func (c *Client) GetWithHeader(ctx context.Context, url string) ([]byte, http.Header, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}

		body, header, retryable, err := c.once(ctx, url)
		if err == nil {
			return body, header, nil
		}
		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, c.maxAttempts, err)

		if !retryable || attempt == c.maxAttempts {
			break
		}
		if err := sleep(ctx, c.backoff(attempt)); err != nil {
			return nil, nil, err
		}
	}

	return nil, nil, fmt.Errorf("GET %s: %w", url, lastErr)
}

// GetJSON fetches the URL and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// once performs a single request attempt. retryable reports whether
// the failure is worth another try.
func (c *Client) once(ctx context.Context, url string) (body []byte, header http.Header, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, false, ctx.Err()
		}
		return nil, nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across attempts.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, nil, isRetryableStatus(resp.StatusCode),
			fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, nil, true, fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.Header, false, nil
}

// isRetryableStatus reports whether a status code marks a temporary
// failure.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff returns the delay before the given attempt's retry,
// doubling each time up to the cap.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.initialBackoff << (attempt - 1)
	if d > c.maxBackoff {
		return c.maxBackoff
	}
	return d
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
