package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

var (
	// ErrRateLimited indicates the remote service refused the request for quota reasons (403 or 429).
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound indicates the remote resource does not exist.
	ErrNotFound = errors.New("remote resource not found")
	// ErrBodyTooLarge indicates the response body exceeded the configured limit.
	ErrBodyTooLarge = errors.New("response body exceeds limit")
)

// StatusError describes a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Transient reports whether retrying later may succeed.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Unwrap maps quota and missing-resource responses onto sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// IsTransient reports whether err is worth retrying on a later run:
// timeouts, network failures, rate limiting and 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrRateLimited) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
