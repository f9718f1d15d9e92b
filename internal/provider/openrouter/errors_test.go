package openrouter

import (
	"errors"
	"strings"
	"testing"

	"github.com/tgaibot/tgaibot/internal/provider"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"rate limit", 429, `{"error":{"message":"slow down"}}`, provider.ErrRateLimit},
		{"server error", 502, `{"error":{"message":"bad gateway"}}`, provider.ErrProviderDown},
		{"context length", 400, `{"error":{"message":"maximum context length exceeded"}}`, provider.ErrContextLength},
		{"auth", 401, `{"error":{"message":"bad key"}}`, nil},
		{"generic 400", 400, `{"error":{"message":"bad request"}}`, nil},
		{"empty body", 503, ``, provider.ErrProviderDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapHTTPError(tt.status, strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v should wrap %v", err, tt.sentinel)
			}
			if tt.sentinel == nil && provider.IsRetryable(err) {
				t.Errorf("error %v should not be retryable", err)
			}
		})
	}
}

func TestIsContextLengthError(t *testing.T) {
	if !isContextLengthError("This model's maximum context length is 8192 tokens") {
		t.Error("context length message not detected")
	}
	if isContextLengthError("invalid request") {
		t.Error("false positive on unrelated message")
	}
}
