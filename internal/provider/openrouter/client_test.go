package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tgaibot/tgaibot/internal/provider"
)

func TestCompleteSuccess(t *testing.T) {
	var gotReq apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if ref := r.Header.Get("HTTP-Referer"); ref != "https://example.com" {
			t.Errorf("HTTP-Referer = %q", ref)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"choices":[{"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}
		}`))
	}))
	defer srv.Close()

	c := New(Options{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Referer: "https://example.com",
		Title:   "tgaibot",
	})

	resp, err := c.Complete(context.Background(), provider.CompletionRequest{
		Model: "openai/gpt-oss-120b",
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleUser, Content: "hello"},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "hi there" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 13 {
		t.Errorf("TotalTokens = %d, want 13", resp.Usage.TotalTokens)
	}
	if gotReq.Model != "openai/gpt-oss-120b" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("non-streaming request should have stream=false")
	}
}

func TestCompleteResolvesAuto(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), provider.CompletionRequest{Model: ModelAuto})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotModel != FallbackOrder[0] {
		t.Errorf("auto resolved to %q, want %q", gotModel, FallbackOrder[0])
	}
}

func TestCompleteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), provider.CompletionRequest{Model: "m"})
	if !errors.Is(err, provider.ErrRateLimit) {
		t.Fatalf("Complete() error = %v, want ErrRateLimit", err)
	}
}

func TestStreamSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"str\"}}]}\n\n"))
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"eam\"}}]}\n\n"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := New(Options{APIKey: "k", BaseURL: srv.URL})
	ch, err := c.Stream(context.Background(), provider.CompletionRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var text string
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		text += chunk.Content
	}
	if text != "stream" {
		t.Errorf("streamed text = %q, want %q", text, "stream")
	}
}

func TestStreamConnectionError(t *testing.T) {
	c := New(Options{APIKey: "k", BaseURL: "http://127.0.0.1:0"})
	_, err := c.Stream(context.Background(), provider.CompletionRequest{Model: "m"})
	if !errors.Is(err, provider.ErrProviderDown) {
		t.Fatalf("Stream() error = %v, want ErrProviderDown", err)
	}
}

func TestVisionMessageEncoding(t *testing.T) {
	msgs := convertMessages([]provider.LLMMessage{
		{
			Role: provider.MessageRoleUser,
			Parts: []provider.ContentPart{
				{Type: "text", Text: "what is this?"},
				{Type: "image_url", ImageURL: "https://example.com/img.jpg"},
			},
		},
	})

	data, err := json.Marshal(msgs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"role":"user","content":[{"type":"text","text":"what is this?"},{"type":"image_url","image_url":{"url":"https://example.com/img.jpg"}}]}]`
	if string(data) != want {
		t.Errorf("encoded = %s\nwant      %s", data, want)
	}
}
