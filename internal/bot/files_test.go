package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

func TestDocumentAnalysis(t *testing.T) {
	llm := &fakeCompleter{response: provider.CompletionResponse{Content: "The report looks good."}}
	b, api := newTestBot(t, llm, false)
	api.filePath = "documents/u1.txt"
	api.fileContent = "quarterly numbers improved across the board"

	upd := textUpdate("")
	upd.Message.Document = &telegram.Document{
		FileID:   "f1",
		FileName: "report.txt",
		FileSize: len(api.fileContent),
	}
	upd.Message.Caption = "what changed?"
	b.HandleUpdate(context.Background(), upd)

	req := llm.lastRequest(t)
	prompt := req.Messages[len(req.Messages)-1].Content
	if !strings.Contains(prompt, "report.txt") || !strings.Contains(prompt, "quarterly numbers") {
		t.Errorf("analysis prompt = %q", prompt)
	}
	if !strings.Contains(prompt, "what changed?") {
		t.Errorf("prompt should carry the caption, got %q", prompt)
	}

	if got := api.lastText(t); got != "The report looks good." {
		t.Errorf("reply = %q", got)
	}
}

func TestPhotoVisionAnalysis(t *testing.T) {
	llm := &fakeCompleter{response: provider.CompletionResponse{Content: "A cat on a windowsill."}}
	b, api := newTestBot(t, llm, false)

	upd := textUpdate("")
	upd.Message.Photo = []telegram.PhotoSize{
		{FileID: "small", Width: 90},
		{FileID: "large", Width: 1280},
	}
	b.HandleUpdate(context.Background(), upd)

	req := llm.lastRequest(t)
	parts := req.Messages[0].Parts
	if len(parts) != 2 || parts[1].Type != "image_url" {
		t.Fatalf("vision parts = %+v", parts)
	}
	if !strings.Contains(parts[1].ImageURL, "photos/u1.jpg") {
		t.Errorf("image URL = %q", parts[1].ImageURL)
	}

	if got := api.lastText(t); got != "A cat on a windowsill." {
		t.Errorf("reply = %q", got)
	}
}

func TestPhotoVisionFailover(t *testing.T) {
	llm := &fakeCompleter{
		response: provider.CompletionResponse{Content: "Second model answered."},
		failModels: map[string]error{
			"openai/gpt-oss-120b": provider.ErrRateLimit,
		},
	}
	b, api := newTestBot(t, llm, false)

	upd := textUpdate("")
	upd.Message.Photo = []telegram.PhotoSize{{FileID: "p1", Width: 800}}
	b.HandleUpdate(context.Background(), upd)

	if got := api.lastText(t); got != "Second model answered." {
		t.Errorf("reply = %q", got)
	}
	if len(llm.requests) < 2 {
		t.Errorf("expected a second vision model attempt, got %d requests", len(llm.requests))
	}
}

func TestDocumentPrompt(t *testing.T) {
	p := documentPrompt("notes.txt", "", "some text")
	if !strings.Contains(p, "summarize") {
		t.Errorf("default prompt should ask for a summary, got %q", p)
	}

	p = documentPrompt("notes.txt", "translate it", "some text")
	if !strings.Contains(p, "translate it") {
		t.Errorf("caption prompt = %q", p)
	}
}
