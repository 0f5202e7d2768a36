package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIErrorSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		sentinel error
		status   int
	}{
		{"not found", NewNotFoundError("product"), ErrNotFound, 404},
		{"validation", NewValidationError("body", "invalid JSON"), ErrInvalidRequest, 400},
		{"unauthorized", NewUnauthorizedError("bad token"), ErrUnauthorized, 401},
		{"upstream", NewUpstreamError("list orders", errors.New("503")), ErrUpstream, 502},
		{"rate limited", NewRateLimitError("list collects"), ErrRateLimited, 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if tt.err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.status)
			}
		})
	}
}

func TestAPIErrorUnwrapThroughChain(t *testing.T) {
	inner := NewRateLimitError("list orders")
	wrapped := fmt.Errorf("aggregating history: %w", inner)

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As failed to find APIError in chain")
	}
	if apiErr.Code != "RATE_LIMITED" {
		t.Errorf("Code = %q, want RATE_LIMITED", apiErr.Code)
	}
	if !errors.Is(wrapped, ErrRateLimited) {
		t.Error("errors.Is failed through wrapping")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := NewNotFoundError("product")
	want := "NOT_FOUND: product not found (not found)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
