package openrouter

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/tgaibot/tgaibot/internal/provider"
)

// sseMaxLineSize is the maximum SSE line size (512 KiB). Long code outputs
// can exceed the default 64 KiB bufio.Scanner limit.
const sseMaxLineSize = 512 * 1024

// parseSSE reads an SSE stream from r and sends decoded chunks to ch.
// It handles OpenRouter-specific keepalive comments, the [DONE] sentinel,
// and mid-stream error objects. The caller must close ch after parseSSE
// returns.
//
// Note: this parser assumes each data payload fits on a single "data:"
// line, which is the format used by all OpenAI-compatible APIs.
func parseSSE(r io.Reader, ch chan<- provider.StreamChunk) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, sseMaxLineSize), sseMaxLineSize)

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line: SSE event separator, skip.
		if line == "" {
			continue
		}

		// SSE comment (starts with ":"): skip.
		if strings.HasPrefix(line, ":") {
			continue
		}

		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimPrefix(line, "data:")
		data = strings.TrimSpace(data)

		// [DONE] sentinel: stream is complete.
		if data == "[DONE]" {
			return
		}

		// OpenRouter keepalive: "data: : OPENROUTER..."
		if strings.HasPrefix(data, ": OPENROUTER") || strings.HasPrefix(data, ":OPENROUTER") {
			continue
		}

		var chunk apiStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			ch <- provider.StreamChunk{Err: err}
			return
		}

		if chunk.Error.Message != "" {
			ch <- provider.StreamChunk{
				Err: mapAPIError(apiError{Error: chunk.Error}),
			}
			return
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]

		sc := provider.StreamChunk{
			Content: choice.Delta.Content,
		}
		if choice.FinishReason != "" {
			sc.FinishReason = mapFinishReason(choice.FinishReason)
		}
		if chunk.Usage != nil {
			sc.Usage = &provider.TokenUsage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}

		ch <- sc
	}

	// Scanner error (e.g., connection reset).
	if err := scanner.Err(); err != nil {
		ch <- provider.StreamChunk{Err: err}
	}
}

// mapFinishReason converts an OpenAI-compatible finish_reason string
// to a provider.FinishReason.
func mapFinishReason(reason string) provider.FinishReason {
	switch reason {
	case "stop":
		return provider.FinishReasonStop
	case "length":
		return provider.FinishReasonLength
	case "content_filter":
		return provider.FinishReasonFiltering
	default:
		return provider.FinishReasonStop
	}
}
