package history

import (
	"context"

	"github.com/tgaibot/tgaibot/internal/provider"
)

// MaxContextTokens bounds the estimated token size of an assembled context.
const MaxContextTokens = 8000

// SystemPrompt is the instruction prepended to every conversation.
const SystemPrompt = "Answer briefly and to the point, the way people chat; use emoji where appropriate. " +
	"Do not use Markdown formatting. " +
	"You are a helpful assistant in Telegram. " +
	"The user may send text, documents, or images. " +
	"When the user sends a file you will receive a description of its contents; " +
	"if the file contains text you can analyse it and answer questions about it."

// EstimateTokens approximates the token count of text. One token is
// roughly 4 characters of English or 6 of Cyrillic; len/5 splits the
// difference.
func EstimateTokens(text string) int {
	return len(text) / 5
}

// BuildContext assembles the completion context for a chat: the system
// prompt followed by recent history, trimmed from the oldest end until the
// estimate fits MaxContextTokens. The system message always survives
// trimming.
func (s *Store) BuildContext(ctx context.Context, chatID int64) ([]provider.LLMMessage, error) {
	recent, err := s.Recent(ctx, chatID, MaxMessages)
	if err != nil {
		return nil, err
	}

	msgs := make([]provider.LLMMessage, 0, len(recent)+1)
	msgs = append(msgs, provider.LLMMessage{
		Role:    provider.MessageRoleSystem,
		Content: SystemPrompt,
	})
	msgs = append(msgs, recent...)

	return trimContext(msgs), nil
}

// trimContext drops the oldest non-system messages until the total token
// estimate fits MaxContextTokens.
func trimContext(msgs []provider.LLMMessage) []provider.LLMMessage {
	total := 0
	for _, m := range msgs {
		total += EstimateTokens(m.Content)
	}
	if total <= MaxContextTokens {
		return msgs
	}

	out := make([]provider.LLMMessage, 0, len(msgs))
	var system []provider.LLMMessage
	var rest []provider.LLMMessage
	for _, m := range msgs {
		if m.Role == provider.MessageRoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	budget := MaxContextTokens
	for _, m := range system {
		budget -= EstimateTokens(m.Content)
	}

	// Walk from the newest message backwards, keeping what fits.
	kept := make([]provider.LLMMessage, 0, len(rest))
	for i := len(rest) - 1; i >= 0; i-- {
		cost := EstimateTokens(rest[i].Content)
		if cost > budget {
			break
		}
		budget -= cost
		kept = append(kept, rest[i])
	}

	out = append(out, system...)
	for i := len(kept) - 1; i >= 0; i-- {
		out = append(out, kept[i])
	}
	return out
}
