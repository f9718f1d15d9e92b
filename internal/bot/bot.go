// Package bot implements the Telegram assistant: command handling, the
// reply keyboard, LLM-backed conversation with streaming, and file analysis.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tgaibot/tgaibot/internal/extract"
	"github.com/tgaibot/tgaibot/internal/history"
	"github.com/tgaibot/tgaibot/internal/metrics"
	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

// Completer is the LLM backend the bot talks to. *provider.Failover
// implements it.
type Completer interface {
	Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error)
	Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamChunk, string, error)
}

// Config holds the bot's behavioral settings.
type Config struct {
	// DownloadsDir is where received files land before extraction.
	DownloadsDir string

	// MaxFileSize rejects larger attachments, in bytes.
	MaxFileSize int64

	// Streaming enables incremental placeholder edits while the model
	// generates.
	Streaming bool
}

// defaults fills unset fields.
func (c *Config) defaults() {
	if c.DownloadsDir == "" {
		c.DownloadsDir = "downloads"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 20 << 20
	}
}

// Bot routes Telegram updates to command, conversation, and file handlers.
type Bot struct {
	config    Config
	client    *telegram.Client
	llm       Completer
	store     *history.Store
	extractor *extract.Extractor
	allow     *telegram.AllowList
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger

	// mu guards choosingModel, the set of users currently inside the
	// model picker.
	mu            sync.Mutex
	choosingModel map[int64]struct{}
}

// New creates a Bot. metrics and tracer may be nil.
func New(config Config, client *telegram.Client, llm Completer, store *history.Store, extractor *extract.Extractor, allow *telegram.AllowList, m *metrics.Metrics, tracer trace.Tracer, logger *slog.Logger) *Bot {
	config.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("bot")
	}
	return &Bot{
		config:        config,
		client:        client,
		llm:           llm,
		store:         store,
		extractor:     extractor,
		allow:         allow,
		metrics:       m,
		tracer:        tracer,
		logger:        logger,
		choosingModel: make(map[int64]struct{}),
	}
}

// HandleUpdate processes one incoming update. It is safe for concurrent use
// and never panics the caller: handler errors are logged and reported to the
// chat where possible.
func (b *Bot) HandleUpdate(ctx context.Context, update *telegram.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	if b.allow != nil && !b.allow.IsAllowed(msg) {
		b.logger.Debug("bot: message from disallowed sender",
			"user_id", msg.From.ID, "chat_id", msg.Chat.ID)
		return
	}

	kind := classify(msg)
	if b.metrics != nil {
		b.metrics.MessagesReceived.WithLabelValues(kind).Inc()
	}

	ctx, span := b.tracer.Start(ctx, "bot.handle_update",
		trace.WithAttributes(
			attribute.String("message.kind", kind),
			attribute.Int64("chat.id", msg.Chat.ID),
		))
	defer span.End()

	var err error
	switch kind {
	case kindCommand:
		err = b.handleCommand(ctx, msg)
	case kindDocument:
		err = b.handleDocument(ctx, msg)
	case kindPhoto:
		err = b.handlePhoto(ctx, msg)
	case kindMedia:
		err = b.handleUnsupportedMedia(ctx, msg)
	default:
		err = b.handleText(ctx, msg)
	}
	if err != nil {
		b.logger.Error("bot: update handling failed",
			"kind", kind, "chat_id", msg.Chat.ID, "error", err)
		b.reportError(ctx, msg.Chat.ID)
	}
}

// Message kinds for dispatch and metrics labels.
const (
	kindText     = "text"
	kindCommand  = "command"
	kindDocument = "document"
	kindPhoto    = "photo"
	kindMedia    = "media"
)

// classify determines how a message should be handled.
func classify(msg *telegram.Message) string {
	switch {
	case msg.Document != nil:
		return kindDocument
	case len(msg.Photo) > 0:
		return kindPhoto
	case msg.Voice != nil || msg.Audio != nil || msg.Video != nil:
		return kindMedia
	case strings.HasPrefix(msg.Text, "/"):
		return kindCommand
	default:
		return kindText
	}
}

// reportError sends a generic failure notice. Best effort: a send failure
// here is only logged.
func (b *Bot) reportError(ctx context.Context, chatID int64) {
	_, err := b.client.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        "Something went wrong while handling your message. Please try again.",
		ReplyMarkup: mainKeyboard(),
	})
	if err != nil {
		b.logger.Warn("bot: failed to report error to chat", "chat_id", chatID, "error", err)
	}
}

// setChoosingModel marks or clears a user's model-picker state.
func (b *Bot) setChoosingModel(userID int64, choosing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if choosing {
		b.choosingModel[userID] = struct{}{}
	} else {
		delete(b.choosingModel, userID)
	}
}

// isChoosingModel reports whether a user is inside the model picker.
func (b *Bot) isChoosingModel(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.choosingModel[userID]
	return ok
}
