package fetcher

import (
	"time"

	"resty.dev/v3"
)

const (
	// DefaultRequestTimeout bounds a single remote call.
	DefaultRequestTimeout = 30 * time.Second
)

// NewHTTPClient creates a JSON client for baseURL. Requests are never
// retried; a failed call is returned to the caller as is.
func NewHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)

	return client
}
