package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

// thinkPattern strips <think>...</think> reasoning blocks emitted by
// reasoning models.
var thinkPattern = regexp.MustCompile(`(?is)<think>.*?</think>\s*`)

// handleText answers a plain text message with an LLM completion, after
// giving keyboard buttons a chance to claim it.
func (b *Bot) handleText(ctx context.Context, msg *telegram.Message) error {
	if msg.Text == "" {
		return nil
	}

	if handled, err := b.handleButton(ctx, msg); handled {
		return err
	}

	return b.converse(ctx, msg, msg.Text)
}

// converse records the user content, asks the model, and delivers the
// answer. Shared by the text, document, and photo flows.
func (b *Bot) converse(ctx context.Context, msg *telegram.Message, userContent string) error {
	chatID := msg.Chat.ID

	if err := b.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		b.logger.Debug("bot: send chat action failed", "chat_id", chatID, "error", err)
	}

	if err := b.store.Append(ctx, chatID, provider.MessageRoleUser, userContent); err != nil {
		return err
	}

	messages, err := b.store.BuildContext(ctx, chatID)
	if err != nil {
		return err
	}

	prefs, err := b.store.GetPrefs(ctx, msg.From.ID)
	if err != nil {
		return err
	}

	req := provider.CompletionRequest{
		Model:       prefs.Model,
		Messages:    messages,
		MaxTokens:   prefs.MaxTokens,
		Temperature: &prefs.Temperature,
	}

	ctx, span := b.tracer.Start(ctx, "bot.completion",
		trace.WithAttributes(attribute.String("model.requested", req.Model)))

	var answer, model string
	start := time.Now()
	if b.config.Streaming {
		answer, model, err = b.streamReply(ctx, chatID, req, prefs.ShowThoughts)
	} else {
		answer, model, err = b.completeReply(ctx, chatID, req)
	}
	b.observeCompletion(model, time.Since(start), err)
	span.SetAttributes(attribute.String("model.used", model))
	span.End()
	if err != nil {
		return fmt.Errorf("bot: completion failed: %w", err)
	}

	if !prefs.ShowThoughts {
		answer = stripThoughts(answer)
	}
	if answer == "" {
		answer = "The model returned an empty response. Try rephrasing or picking another model."
	}

	if err := b.store.Append(ctx, chatID, provider.MessageRoleAssistant, answer); err != nil {
		return err
	}

	// Streaming already delivered the text by editing the placeholder.
	if b.config.Streaming {
		return nil
	}
	return b.replyWithKeyboard(ctx, chatID, answer)
}

// completeReply runs a non-streaming completion behind a visible "thinking"
// placeholder, which is deleted once the answer is ready.
func (b *Bot) completeReply(ctx context.Context, chatID int64, req provider.CompletionRequest) (string, string, error) {
	placeholder, err := b.client.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: chatID,
		Text:   "🤔 Thinking...",
	})
	if err == nil {
		defer func() {
			if err := b.client.DeleteMessage(ctx, chatID, placeholder.MessageID); err != nil {
				b.logger.Debug("bot: delete placeholder failed", "chat_id", chatID, "error", err)
			}
		}()
	} else {
		b.logger.Debug("bot: send placeholder failed", "chat_id", chatID, "error", err)
	}

	resp, err := b.llm.Complete(ctx, req)
	if err != nil {
		return "", req.Model, err
	}
	b.recordUsage(&resp.Usage)
	return resp.Content, resp.Model, nil
}

// observeCompletion records completion metrics.
func (b *Bot) observeCompletion(model string, elapsed time.Duration, err error) {
	if b.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	b.metrics.Completions.WithLabelValues(model, outcome).Inc()
	b.metrics.CompletionLatency.WithLabelValues(model).Observe(elapsed.Seconds())
}

// recordUsage feeds provider-reported token counts into metrics.
func (b *Bot) recordUsage(usage *provider.TokenUsage) {
	if b.metrics == nil || usage == nil {
		return
	}
	b.metrics.TokensUsed.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	b.metrics.TokensUsed.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
}

// stripThoughts removes reasoning blocks from a model answer.
func stripThoughts(answer string) string {
	return strings.TrimSpace(thinkPattern.ReplaceAllString(answer, ""))
}
