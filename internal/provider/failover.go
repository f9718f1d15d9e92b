package provider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Failover wraps a Provider and retries a request across a fixed model
// order when a model fails with a retryable error. The requested model is
// always tried first, then the remaining fallback models in order.
type Failover struct {
	provider Provider
	fallback []string
	logger   *slog.Logger
}

// NewFailover creates a Failover over p with the given fallback model order.
func NewFailover(p Provider, fallback []string, logger *slog.Logger) *Failover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Failover{
		provider: p,
		fallback: fallback,
		logger:   logger,
	}
}

// candidates returns the model try-order for a request: the preferred model
// first, then the fallback list with the preferred model deduplicated.
func (f *Failover) candidates(preferred string) []string {
	out := make([]string, 0, len(f.fallback)+1)
	if preferred != "" {
		out = append(out, preferred)
	}
	for _, m := range f.fallback {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// Complete tries the request against each candidate model until one
// succeeds. Non-retryable errors stop the failover immediately.
func (f *Failover) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var lastErr error

	for _, model := range f.candidates(req.Model) {
		attempt := req
		attempt.Model = model

		resp, err := f.provider.Complete(ctx, attempt)
		if err == nil {
			resp.Model = model
			return resp, nil
		}

		if ctx.Err() != nil {
			return CompletionResponse{}, ctx.Err()
		}
		if !IsRetryable(err) {
			return CompletionResponse{}, err
		}

		f.logger.Warn("model failed, trying next",
			"model", model,
			"error", err,
		)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrProviderDown
	}
	return CompletionResponse{}, fmt.Errorf("provider: %w: %w", ErrAllModels, lastErr)
}

// Stream tries to open a stream against each candidate model until one
// connects. Only connection-time failures trigger failover; mid-stream
// errors are delivered on the returned channel and are the caller's to
// handle.
func (f *Failover) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, string, error) {
	var lastErr error

	for _, model := range f.candidates(req.Model) {
		attempt := req
		attempt.Model = model

		ch, err := f.provider.Stream(ctx, attempt)
		if err == nil {
			return ch, model, nil
		}

		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		if !IsRetryable(err) {
			return nil, "", err
		}

		f.logger.Warn("model stream failed, trying next",
			"model", model,
			"error", err,
		)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrProviderDown
	}
	return nil, "", fmt.Errorf("provider: %w: %w", ErrAllModels, lastErr)
}

// ContextWindowSize delegates to the wrapped provider.
func (f *Failover) ContextWindowSize(model string) int {
	return f.provider.ContextWindowSize(model)
}
