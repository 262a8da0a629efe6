package webclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DefaultRetryAfter is assumed when a 429 arrives without a Retry-After header.
const DefaultRetryAfter = 30 * time.Second

// AuthError reports a credential or token failure (401).
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError reports a 429 and carries the provider's retry-after hint.
// It is surfaced to the caller; nothing below the retry loop waits on it.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
}

// TransientError reports a timeout or 5xx that is worth retrying.
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError reports a 4xx (other than 401/429) that retrying cannot fix.
type PermanentError struct {
	Provider   string
	StatusCode int
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: permanent API error: status %d", e.Provider, e.StatusCode)
}

// ClassifyStatus converts a non-2xx response status into the typed error the
// retry loop understands. Returns nil for 2xx.
func ClassifyStatus(provider string, status int, header http.Header) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return &AuthError{Provider: provider, Err: fmt.Errorf("status %d", status)}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Provider: provider, RetryAfter: retryAfter(header)}
	case status >= 500:
		return &TransientError{Provider: provider, Err: fmt.Errorf("status %d", status)}
	default:
		return &PermanentError{Provider: provider, StatusCode: status}
	}
}

// WrapTransport classifies a transport-level failure. Timeouts and
// cancellations count as transient so they burn a retry attempt.
func WrapTransport(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Provider: provider, Err: err}
}

// IsRetryable reports whether the retry loop should attempt the call again.
func IsRetryable(err error) bool {
	var transient *TransientError
	var rateLimited *RateLimitError
	if errors.As(err, &transient) || errors.As(err, &rateLimited) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func retryAfter(header http.Header) time.Duration {
	if header == nil {
		return DefaultRetryAfter
	}
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultRetryAfter
}
