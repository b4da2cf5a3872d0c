// Package fetch acquires page HTML through interchangeable strategies:
// a fast static HTTP tier and a headless-browser render tier.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ContactDiscovery/1.0)"

// MaxRedirects is the number of redirects the HTTP tier follows.
const MaxRedirects = 10

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 5 << 20

// Tier names used in logs and metrics.
const (
	TierHTTP   = "http"
	TierRender = "render"
	TierCache  = "cache"
)

// Result holds the content of a fetched page.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
	Tier        string
}

// Error represents an error during URL fetching (network, timeout or non-2xx status).
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

// IsPermanentStatus reports whether an HTTP status means the page will not come back:
// 404, 410 and 451.
func IsPermanentStatus(status int) bool {
	switch status {
	case http.StatusNotFound, http.StatusGone, http.StatusUnavailableForLegalReasons:
		return true
	default:
		return false
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Strategy fetches a single URL. Implementations release their network
// resources before returning.
type Strategy interface {
	Fetch(ctx context.Context, urlStr string) (*Result, error)
}

// Options configures the HTTP tier.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// HTTPFetcher is the fast tier: a plain GET with redirect following.
type HTTPFetcher struct {
	client *http.Client
	opts   *Options
}

// NewHTTPFetcher creates an HTTPFetcher. A nil opts uses DefaultOptions.
func NewHTTPFetcher(opts *Options) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	// Create HTTP client with timeout and a redirect cap
	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", MaxRedirects)
			}
			return nil
		},
	}
	return &HTTPFetcher{client: client, opts: opts}
}

// Fetch retrieves HTML content from a URL.
// On a non-2xx status the partial result is returned alongside the error.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	// Create request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	// Set headers
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	// Execute request
	resp, err := f.client.Do(req)
	if err != nil {
		message := "HTTP request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			message = "request timed out"
		}
		return nil, &Error{
			URL:     urlStr,
			Message: message,
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Tier:        TierHTTP,
	}

	// Check for non-success status
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}
