// Package provider defines the LLM provider abstraction used by the bot.
package provider

import "context"

// MessageRole identifies the sender of a message in a conversation.
type MessageRole string

// MessageRole constants for conversation messages.
const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// FinishReason describes why the model stopped generating.
type FinishReason string

// FinishReason constants for model completion termination.
const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonFiltering FinishReason = "filtering"
)

// LLMMessage represents a single message in a conversation.
// Content is either a plain string or, for vision requests, a list of
// ContentParts (mutually exclusive — Parts wins when non-empty).
type LLMMessage struct {
	Role    MessageRole   `json:"role"`
	Content string        `json:"content"`
	Parts   []ContentPart `json:"parts,omitempty"`
}

// ContentPart is a single element of a multimodal message.
type ContentPart struct {
	Type     string `json:"type"` // "text" or "image_url"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// CompletionRequest is the input to a Provider.Complete or Provider.Stream call.
// Model selects the model for this request; an empty Model uses the
// provider's configured default.
type CompletionRequest struct {
	Model       string       `json:"model,omitempty"`
	Messages    []LLMMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
	TopP        *float64     `json:"top_p,omitempty"`
	Stop        []string     `json:"stop,omitempty"`
}

// CompletionResponse is the output of a Provider.Complete call.
type CompletionResponse struct {
	Content      string       `json:"content"`
	Model        string       `json:"model,omitempty"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        TokenUsage   `json:"usage"`
}

// StreamChunk represents one piece of a streaming completion response.
type StreamChunk struct {
	Content      string       `json:"content,omitempty"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *TokenUsage  `json:"usage,omitempty"`
	Err          error        `json:"-"`
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider is the interface implemented by concrete LLM backends.
type Provider interface {
	// Complete performs a blocking completion request.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Stream performs a streaming completion request. Connection errors are
	// returned directly; mid-stream errors arrive via StreamChunk.Err. The
	// channel is closed when the stream ends.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)

	// ContextWindowSize returns the context window in tokens for a model.
	ContextWindowSize(model string) int
}
