package gateway

import (
	"fmt"
	"time"
)

// NotFoundError indicates the requested GitHub user does not exist.
type NotFoundError struct {
	Username string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("github user %q not found", e.Username)
}

// RateLimitError indicates the GitHub API quota is exhausted.
// RetryAfter is zero when the API gave no reset hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("github api rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "github api rate limit exceeded"
}

// APIError covers the remaining upstream failures: unexpected status
// codes and transport-level errors. The cause is preserved so callers
// can still match with errors.Is (e.g. context.DeadlineExceeded).
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github api error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("github api error: %v", e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
