// Package fetch provides a rate-limited HTTP GET client for polling external
// providers. Every request waits on a token-bucket limiter, so a single Client
// shared between goroutines keeps a provider under its published rate.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/formatting"
)

const (
	defaultTimeout = 15 * time.Second
	defaultMaxBody = 5 * 1024 * 1024
	errorBodyLimit = 512
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	// Timeout bounds each request including body read.
	Timeout time.Duration
	// Interval is the minimum spacing between requests. Zero disables limiting.
	Interval time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// MaxBodyBytes caps the bytes read from a response body.
	MaxBodyBytes int64
	// Header is merged into every request.
	Header http.Header
}

// Client performs rate-limited GET requests.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBody   int64
	header    http.Header
}

// New creates a Client from opts.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodyBytes,
		header:    opts.Header.Clone(),
	}
}

// Get waits for the limiter, performs the request and returns the body.
// Non-2xx responses are returned as *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &StatusError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", rawURL, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%s: %w (%s)", rawURL, ErrBodyTooLarge, formatting.FormatBytes(c.maxBody, 1))
	}

	return body, nil
}

// GetJSON performs Get and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, v any) error {
	body, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
