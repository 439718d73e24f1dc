package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrNoAccessToken is returned by ParseAccessToken when the cookie string
// carries no access_token value.
var ErrNoAccessToken = errors.New("no access_token in cookie")

const browserAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// Temporary reports whether the request may succeed if repeated: request
// timeouts, rate limiting and server errors.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// Client wraps HTTP operations with the session and retry policy used for
// the course platform.
//
// Client provides:
//   - The access_token session cookie on API and download requests
//   - A browser User-Agent header
//   - Timeout handling
//   - Exponential backoff retries of transient failures
//
// Example usage:
//
//	token, err := http.ParseAccessToken(os.Getenv("UDEMY_COOKIE"))
//	client := http.NewClient(
//	    http.WithAccessToken(token),
//	    http.WithRetry(10, 2*time.Second, 10*time.Second),
//	)
//
//	var page curriculumPage
//	err = client.GetJSON(ctx, apiURL, params, &page)
type Client struct {
	httpClient  *http.Client
	userAgent   string
	accessToken string

	maxAttempts int
	minWait     time.Duration
	maxWait     time.Duration

	log *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAccessToken sets the session token sent as the access_token cookie.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithRetry sets how many attempts a request gets and the bounds of the
// exponential wait between them.
func WithRetry(maxAttempts int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = max(1, maxAttempts)
		c.minWait = minWait
		c.maxWait = max(minWait, maxWait)
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new HTTP client.
//
// Without options the client has a 60 second timeout, a desktop browser
// User-Agent, no session and 10 attempts per request waiting 2s to 10s
// between them.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		maxAttempts: 10,
		minWait:     2 * time.Second,
		maxWait:     10 * time.Second,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseAccessToken extracts the access_token value from a full browser
// cookie string such as "ud_cache_brand=ES; access_token=abc; other=1".
func ParseAccessToken(cookie string) (string, error) {
	_, rest, found := strings.Cut(cookie, "access_token=")
	if !found {
		return "", ErrNoAccessToken
	}
	token, _, _ := strings.Cut(rest, ";")
	token = strings.Trim(strings.TrimSpace(token), `"`)
	if token == "" {
		return "", ErrNoAccessToken
	}
	return token, nil
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

type request struct {
	url        string
	auth       bool
	accept     string
	onProgress func(written, total int64)
}

// Get performs an authenticated GET request and returns the response body.
//
// Transport errors and temporary statuses (see StatusError.Temporary) are
// retried; any other status fails at once with a *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, request{url: url, auth: true})
}

// GetString performs an authenticated GET request and returns the body as a
// string.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetJSON performs an authenticated GET request with the given query
// parameters and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}

	body, err := c.do(ctx, request{url: rawURL, auth: true, accept: "application/json"})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// GetPage fetches a public web page the way a browser would, without the
// session cookie.
func (c *Client) GetPage(ctx context.Context, url string) (string, error) {
	body, err := c.do(ctx, request{url: url, accept: browserAccept})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadBytes downloads a file with the session cookie and returns its
// content. onProgress may be nil.
//
// Example:
//
//	data, err := client.DownloadBytes(ctx, fileURL, func(written, total int64) {
//	    fmt.Printf("%d/%d\r", written, total)
//	})
func (c *Client) DownloadBytes(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error) {
	return c.do(ctx, request{url: url, auth: true, onProgress: onProgress})
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		data, err := c.once(ctx, r)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			var serr *StatusError
			if errors.As(err, &serr) && !serr.Temporary() {
				return backoff.Permanent(err)
			}
			return err
		}
		body = data
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn("request failed, retrying",
			zap.String("url", r.url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) once(ctx context.Context, r request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.auth && c.accessToken != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: c.accessToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: r.url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.onProgress != nil {
		w = &ProgressWriter{Writer: &buf, Total: resp.ContentLength, OnUpdate: r.onProgress}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.minWait
	b.MaxInterval = c.maxWait
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)
}
