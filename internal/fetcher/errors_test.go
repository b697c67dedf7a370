package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServer},
		{503, ErrorTypeServer},
		{400, ErrorTypeClient},
		{404, ErrorTypeClient},
		{302, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status)
			if err.Type != tt.want {
				t.Errorf("Type = %q, want %q", err.Type, tt.want)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestFetchError_Error(t *testing.T) {
	withStatus := ClassifyHTTPError(500)
	if got, want := withStatus.Error(), "server error (status 500): server returned an error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noStatus := NewValidationError("data.providers missing from response")
	if got, want := noStatus.Error(), "validation error: data.providers missing from response"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestClassifyTransportError(t *testing.T) {
	timeout := ClassifyTransportError(fmt.Errorf("post: %w", context.DeadlineExceeded))
	if timeout.Type != ErrorTypeTimeout {
		t.Errorf("Type = %q, want %q", timeout.Type, ErrorTypeTimeout)
	}
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Error("timeout error does not unwrap to context.DeadlineExceeded")
	}

	cause := errors.New("connection refused")
	network := ClassifyTransportError(cause)
	if network.Type != ErrorTypeNetwork {
		t.Errorf("Type = %q, want %q", network.Type, ErrorTypeNetwork)
	}
	if !errors.Is(network, cause) {
		t.Error("network error does not unwrap to its cause")
	}

	existing := NewValidationError("bad")
	if got := ClassifyTransportError(fmt.Errorf("wrapped: %w", existing)); got != existing {
		t.Errorf("ClassifyTransportError() = %v, want the existing FetchError", got)
	}
}

func TestTypeOf(t *testing.T) {
	if got := TypeOf(fmt.Errorf("day 2: %w", ClassifyHTTPError(401))); got != ErrorTypeAuth {
		t.Errorf("TypeOf() = %q, want %q", got, ErrorTypeAuth)
	}
	if got := TypeOf(errors.New("plain")); got != ErrorTypeUnknown {
		t.Errorf("TypeOf() = %q, want %q", got, ErrorTypeUnknown)
	}
}

func TestNewQueryError(t *testing.T) {
	err := NewQueryError([]string{"unknown metric", "bad slug"})
	want := "validation error: query rejected: unknown metric; bad slug"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
