package fetcher

import (
	"time"

	"resty.dev/v3"
)

// DefaultHTTPTimeout bounds a single request attempt.
const DefaultHTTPTimeout = 10 * time.Second

// NewHTTPClient creates a new HTTP client for the upstream price APIs.
// Resty's own retry mechanism stays disabled: retries are driven by Retrier
// so the attempt count and fixed interval are exact.
func NewHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	client := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)

	return client
}
