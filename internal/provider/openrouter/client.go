package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tgaibot/tgaibot/internal/provider"
)

// apiRequest is the OpenAI-compatible chat completion request body.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
	TopP        *float64     `json:"top_p,omitempty"`
	Stop        []string     `json:"stop,omitempty"`
	Stream      bool         `json:"stream"`
}

// apiMessage is an OpenAI-compatible chat message. Content is a string for
// plain messages or an array of content parts for vision requests.
type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// apiContentPart is a multimodal content element.
type apiContentPart struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	ImageURL *apiImageURL `json:"image_url,omitempty"`
}

// apiImageURL wraps an image URL for a vision content part.
type apiImageURL struct {
	URL string `json:"url"`
}

// apiResponse is the non-streaming OpenAI-compatible response.
type apiResponse struct {
	Choices []apiChoice `json:"choices"`
	Usage   apiUsage    `json:"usage"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// apiChoice is a single choice in a completion response.
type apiChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// apiStreamChunk is a single chunk in a streaming response.
type apiStreamChunk struct {
	Choices []apiStreamChoice `json:"choices"`
	Usage   *apiUsage         `json:"usage,omitempty"`
	Error   struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// apiStreamChoice is a choice within a streaming chunk.
type apiStreamChoice struct {
	Delta struct {
		Content string `json:"content,omitempty"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

// apiUsage holds token consumption data.
type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a non-streaming completion request.
func (c *Client) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	apiReq := c.buildRequest(req, false)

	resp, err := c.doRequest(ctx, apiReq)
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return provider.CompletionResponse{}, mapHTTPError(resp.StatusCode, resp.Body)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return provider.CompletionResponse{}, fmt.Errorf("openrouter: decoding response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return provider.CompletionResponse{}, fmt.Errorf("openrouter: %s", apiResp.Error.Message)
	}

	return convertResponse(apiResp, apiReq.Model), nil
}

// Stream sends a streaming completion request. Connection errors are
// returned directly. Mid-stream errors are delivered via StreamChunk.Err.
func (c *Client) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamChunk, error) {
	apiReq := c.buildRequest(req, true)

	resp, err := c.doRequest(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, mapHTTPError(resp.StatusCode, resp.Body)
	}

	ch := make(chan provider.StreamChunk, 8)
	go func() {
		defer func() { _ = resp.Body.Close() }()
		defer close(ch)
		parseSSE(resp.Body, ch)
	}()

	return ch, nil
}

// buildRequest converts a provider.CompletionRequest into an apiRequest.
func (c *Client) buildRequest(req provider.CompletionRequest, stream bool) apiRequest {
	return apiRequest{
		Model:       c.resolveModel(req.Model),
		Messages:    convertMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Stream:      stream,
	}
}

// doRequest sends an API request and returns the raw HTTP response.
func (c *Client) doRequest(ctx context.Context, apiReq apiRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: marshaling request: %w", err)
	}

	url := c.opts.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	if c.opts.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.opts.Referer)
	}
	if c.opts.Title != "" {
		httpReq.Header.Set("X-Title", c.opts.Title)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Wrap transport errors with ErrProviderDown so the failover
		// treats network failures as retryable.
		return nil, fmt.Errorf("openrouter: sending request: %w", provider.ErrProviderDown)
	}

	return resp, nil
}

// convertMessages converts provider messages to API messages.
func convertMessages(msgs []provider.LLMMessage) []apiMessage {
	out := make([]apiMessage, len(msgs))
	for i, m := range msgs {
		am := apiMessage{Role: string(m.Role)}
		if len(m.Parts) > 0 {
			parts := make([]apiContentPart, len(m.Parts))
			for j, p := range m.Parts {
				parts[j] = apiContentPart{Type: p.Type, Text: p.Text}
				if p.ImageURL != "" {
					parts[j].ImageURL = &apiImageURL{URL: p.ImageURL}
				}
			}
			am.Content = parts
		} else {
			am.Content = m.Content
		}
		out[i] = am
	}
	return out
}

// convertResponse converts an API response to a provider.CompletionResponse.
func convertResponse(resp apiResponse, model string) provider.CompletionResponse {
	cr := provider.CompletionResponse{
		Model: model,
		Usage: provider.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) == 0 {
		return cr
	}

	choice := resp.Choices[0]
	cr.Content = choice.Message.Content
	cr.FinishReason = mapFinishReason(choice.FinishReason)

	return cr
}
