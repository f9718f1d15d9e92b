package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider fails for models in failing with failErr and succeeds otherwise.
type fakeProvider struct {
	failing map[string]error
	calls   []string
}

func (f *fakeProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	f.calls = append(f.calls, req.Model)
	if err, ok := f.failing[req.Model]; ok {
		return CompletionResponse{}, err
	}
	return CompletionResponse{Content: "reply from " + req.Model}, nil
}

func (f *fakeProvider) Stream(_ context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	f.calls = append(f.calls, req.Model)
	if err, ok := f.failing[req.Model]; ok {
		return nil, err
	}
	ch := make(chan StreamChunk, 1)
	ch <- StreamChunk{Content: "reply from " + req.Model}
	close(ch)
	return ch, nil
}

func (f *fakeProvider) ContextWindowSize(string) int { return 8192 }

func TestFailoverPreferredFirst(t *testing.T) {
	fake := &fakeProvider{}
	fo := NewFailover(fake, []string{"b", "c"}, discardLogger())

	resp, err := fo.Complete(context.Background(), CompletionRequest{Model: "a"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Model != "a" {
		t.Errorf("Model = %q, want %q", resp.Model, "a")
	}
	if len(fake.calls) != 1 || fake.calls[0] != "a" {
		t.Errorf("calls = %v, want [a]", fake.calls)
	}
}

func TestFailoverFallsBackOnRetryable(t *testing.T) {
	fake := &fakeProvider{failing: map[string]error{
		"a": fmt.Errorf("limit: %w", ErrRateLimit),
		"b": fmt.Errorf("down: %w", ErrProviderDown),
	}}
	fo := NewFailover(fake, []string{"b", "c"}, discardLogger())

	resp, err := fo.Complete(context.Background(), CompletionRequest{Model: "a"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Model != "c" {
		t.Errorf("Model = %q, want %q", resp.Model, "c")
	}
	if len(fake.calls) != 3 {
		t.Errorf("calls = %v, want 3 attempts", fake.calls)
	}
}

func TestFailoverStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("invalid api key")
	fake := &fakeProvider{failing: map[string]error{"a": permanent}}
	fo := NewFailover(fake, []string{"b"}, discardLogger())

	_, err := fo.Complete(context.Background(), CompletionRequest{Model: "a"})
	if !errors.Is(err, permanent) {
		t.Fatalf("Complete() error = %v, want %v", err, permanent)
	}
	if len(fake.calls) != 1 {
		t.Errorf("calls = %v, want single attempt", fake.calls)
	}
}

func TestFailoverAllExhausted(t *testing.T) {
	fake := &fakeProvider{failing: map[string]error{
		"a": ErrRateLimit,
		"b": ErrRateLimit,
	}}
	fo := NewFailover(fake, []string{"a", "b"}, discardLogger())

	_, err := fo.Complete(context.Background(), CompletionRequest{Model: "a"})
	if !errors.Is(err, ErrAllModels) {
		t.Fatalf("Complete() error = %v, want ErrAllModels", err)
	}
	if !errors.Is(err, ErrRateLimit) {
		t.Errorf("Complete() error should wrap the last model error, got %v", err)
	}
}

func TestFailoverDeduplicatesPreferred(t *testing.T) {
	fake := &fakeProvider{failing: map[string]error{
		"a": ErrProviderDown,
		"b": ErrProviderDown,
	}}
	fo := NewFailover(fake, []string{"a", "b"}, discardLogger())

	_, err := fo.Complete(context.Background(), CompletionRequest{Model: "a"})
	if !errors.Is(err, ErrAllModels) {
		t.Fatalf("Complete() error = %v, want ErrAllModels", err)
	}
	want := []string{"a", "b"}
	if len(fake.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fake.calls, want)
	}
	for i := range want {
		if fake.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, fake.calls[i], want[i])
		}
	}
}

func TestFailoverStream(t *testing.T) {
	fake := &fakeProvider{failing: map[string]error{"a": ErrProviderDown}}
	fo := NewFailover(fake, []string{"b"}, discardLogger())

	ch, model, err := fo.Stream(context.Background(), CompletionRequest{Model: "a"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if model != "b" {
		t.Errorf("model = %q, want %q", model, "b")
	}
	chunk := <-ch
	if chunk.Content != "reply from b" {
		t.Errorf("chunk = %q", chunk.Content)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrRateLimit, true},
		{ErrProviderDown, true},
		{fmt.Errorf("wrapped: %w", ErrRateLimit), true},
		{ErrContextLength, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
