package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tgaibot/tgaibot/internal/extract"
	"github.com/tgaibot/tgaibot/internal/history"
	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// apiCall records one Bot API method invocation.
type apiCall struct {
	Method string
	Body   map[string]any
}

// fakeAPI is an httptest-backed Telegram Bot API stub recording every call.
type fakeAPI struct {
	mu          sync.Mutex
	calls       []apiCall
	nextID      int
	server      *httptest.Server
	fileContent string
	filePath    string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{nextID: 100, filePath: "photos/u1.jpg"}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// File downloads hit /file/bot<token>/<path>.
		if strings.Contains(r.URL.Path, "/file/") {
			_, _ = w.Write([]byte(f.fileContent))
			return
		}

		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}

		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Body: body})
		f.nextID++
		id := f.nextID
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		switch method {
		case "sendMessage", "editMessageText":
			resp := telegram.APIResponse[telegram.Message]{
				OK:     true,
				Result: telegram.Message{MessageID: id},
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "getFile":
			resp := telegram.APIResponse[telegram.File]{
				OK:     true,
				Result: telegram.File{FileID: "f1", FileUniqueID: "u1", FilePath: f.filePath, FileSize: len(f.fileContent)},
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			_ = json.NewEncoder(w).Encode(telegram.APIResponse[bool]{OK: true, Result: true})
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

// callsFor returns the recorded calls for one method.
func (f *fakeAPI) callsFor(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// lastText returns the text of the last sendMessage call.
func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	sends := f.callsFor("sendMessage")
	if len(sends) == 0 {
		t.Fatal("no sendMessage calls recorded")
	}
	text, _ := sends[len(sends)-1].Body["text"].(string)
	return text
}

// fakeCompleter is a scripted Completer.
type fakeCompleter struct {
	mu       sync.Mutex
	requests []provider.CompletionRequest

	response provider.CompletionResponse
	err      error

	// failModels makes Complete fail for specific models.
	failModels map[string]error

	// chunks feeds Stream.
	chunks []provider.StreamChunk
}

func (f *fakeCompleter) Complete(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err, ok := f.failModels[req.Model]; ok {
		return provider.CompletionResponse{}, err
	}
	if f.err != nil {
		return provider.CompletionResponse{}, f.err
	}
	resp := f.response
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return resp, nil
}

func (f *fakeCompleter) Stream(_ context.Context, req provider.CompletionRequest) (<-chan provider.StreamChunk, string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return nil, req.Model, f.err
	}
	ch := make(chan provider.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, req.Model, nil
}

func (f *fakeCompleter) lastRequest(t *testing.T) provider.CompletionRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no completion requests recorded")
	}
	return f.requests[len(f.requests)-1]
}

// newTestBot wires a Bot against the fake API with a real SQLite store.
func newTestBot(t *testing.T, llm Completer, streaming bool) (*Bot, *fakeAPI) {
	t.Helper()

	api := newFakeAPI(t)
	client := telegram.NewClient("test-token", api.server.URL)

	store, err := history.Open(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	b := New(Config{
		DownloadsDir: t.TempDir(),
		Streaming:    streaming,
	}, client, llm, store, extract.New(nil), nil, nil, nil, discardLogger())
	return b, api
}

// textUpdate builds a plain text update from a non-bot user.
func textUpdate(text string) *telegram.Update {
	return &telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			From:      &telegram.User{ID: 42, FirstName: "Ann"},
			Chat:      telegram.Chat{ID: 42, Type: "private"},
			Text:      text,
		},
	}
}
