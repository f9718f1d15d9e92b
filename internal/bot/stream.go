package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

const streamPlaceholder = "…" // Ellipsis character

// minFlushDelta is the minimum character delta before flushing an edit.
const minFlushDelta = 200

// streamFlushInterval is how often buffered chunks are flushed even when
// the delta stays below minFlushDelta.
const streamFlushInterval = 2 * time.Second

// streamReply delivers a streaming completion by editing a placeholder
// message as chunks arrive. It returns the full accumulated answer and the
// model that produced it. Unless showThoughts is set, <think> blocks are
// withheld from the edits (an open block holds the edit back until it
// closes).
func (b *Bot) streamReply(ctx context.Context, chatID int64, req provider.CompletionRequest, showThoughts bool) (string, string, error) {
	stream, model, err := b.llm.Stream(ctx, req)
	if err != nil {
		return "", model, err
	}

	placeholder, err := b.client.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: chatID,
		Text:   streamPlaceholder,
	})
	if err != nil {
		return "", model, err
	}

	var buf strings.Builder
	var streamErr error
	lastFlushed := ""
	overflow := false

	ticker := time.NewTicker(streamFlushInterval)
	defer ticker.Stop()

	visible := func() string {
		text := buf.String()
		if !showThoughts {
			text = stripThoughts(text)
			// An unclosed think block would leak; hold the edit back.
			if open := strings.LastIndex(strings.ToLower(text), "<think>"); open >= 0 {
				text = strings.TrimSpace(text[:open])
			}
		}
		if len(text) > telegram.MaxMessageLength {
			text = telegram.TruncateUTF8(text, telegram.MaxMessageLength)
		}
		return text
	}

	flush := func() {
		text := visible()
		if text == "" || text == lastFlushed {
			return
		}
		if err := b.editStreamed(ctx, chatID, placeholder.MessageID, text); err != nil {
			b.logger.Warn("bot: streaming edit failed", "chat_id", chatID, "error", err)
			return
		}
		lastFlushed = text
	}

loop:
	for {
		select {
		case <-ctx.Done():
			streamErr = ctx.Err()
			break loop

		case chunk, ok := <-stream:
			if !ok {
				break loop
			}
			if chunk.Err != nil {
				streamErr = chunk.Err
				break loop
			}
			b.recordUsage(chunk.Usage)

			if overflow {
				// Keep accumulating for history, but stop editing.
				buf.WriteString(chunk.Content)
				continue
			}

			buf.WriteString(chunk.Content)
			if buf.Len() > telegram.MaxMessageLength {
				overflow = true
				flush()
			} else if buf.Len()-len(lastFlushed) >= minFlushDelta {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}

	answer := buf.String()
	if streamErr != nil {
		// Remove the dangling placeholder; the caller reports the error.
		if err := b.client.DeleteMessage(ctx, chatID, placeholder.MessageID); err != nil {
			b.logger.Debug("bot: delete placeholder failed", "chat_id", chatID, "error", err)
		}
		return answer, model, streamErr
	}

	final := answer
	if !showThoughts {
		final = stripThoughts(final)
	}

	// Long answers don't fit a single edit: replace the placeholder with
	// split messages instead.
	if len(final) > telegram.MaxMessageLength {
		if err := b.client.DeleteMessage(ctx, chatID, placeholder.MessageID); err != nil {
			b.logger.Debug("bot: delete placeholder failed", "chat_id", chatID, "error", err)
		}
		return answer, model, b.replyWithKeyboard(ctx, chatID, final)
	}

	if final == "" {
		final = "The model returned an empty response. Try rephrasing or picking another model."
	}
	if final != lastFlushed {
		if err := b.editStreamed(ctx, chatID, placeholder.MessageID, final); err != nil {
			return answer, model, err
		}
	}
	return answer, model, nil
}

// editStreamed edits the placeholder, tolerating "message is not modified"
// and honoring rate limits with a single retry.
func (b *Bot) editStreamed(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := b.client.EditMessageText(ctx, telegram.EditMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err == nil {
		return nil
	}

	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 400 && strings.Contains(apiErr.Description, "not modified") {
			return nil
		}
		if apiErr.RetryAfter > 0 {
			timer := time.NewTimer(time.Duration(apiErr.RetryAfter) * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			_, retryErr := b.client.EditMessageText(ctx, telegram.EditMessageTextRequest{
				ChatID:    chatID,
				MessageID: messageID,
				Text:      text,
			})
			return retryErr
		}
	}
	return err
}
