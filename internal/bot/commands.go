package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/tgaibot/tgaibot/internal/history"
	"github.com/tgaibot/tgaibot/internal/provider/openrouter"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

const welcomeText = `Hi! I'm an AI assistant powered by OpenRouter.

Send me a message and I'll answer. You can also send documents
(txt, pdf, docx) or photos and I'll analyze them.

Use the keyboard below to pick a model, check status, or clear
the conversation.`

const helpText = `What I can do:

• Answer questions — just send a message
• Analyze documents — send a txt, pdf, or docx file
• Describe and read photos — send an image
• Remember the conversation — recent messages are kept as context

Commands:
/start — restart the bot
/think — toggle showing the model's reasoning

Use the keyboard buttons to switch models or clear the chat.`

// handleCommand dispatches slash commands.
func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message) error {
	cmd := msg.Text
	if i := strings.IndexAny(cmd, " @"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		return b.cmdStart(ctx, msg)
	case "/think":
		return b.cmdThink(ctx, msg)
	case "/help":
		return b.replyWithKeyboard(ctx, msg.Chat.ID, helpText)
	default:
		return b.replyWithKeyboard(ctx, msg.Chat.ID,
			fmt.Sprintf("Unknown command %s. Try /help.", cmd))
	}
}

// cmdStart greets the user, resets the picker state, and shows the main
// keyboard.
func (b *Bot) cmdStart(ctx context.Context, msg *telegram.Message) error {
	b.setChoosingModel(msg.From.ID, false)
	return b.replyWithKeyboard(ctx, msg.Chat.ID, welcomeText)
}

// cmdThink toggles whether <think> blocks from reasoning models are shown.
func (b *Bot) cmdThink(ctx context.Context, msg *telegram.Message) error {
	p, err := b.store.UpdatePrefs(ctx, msg.From.ID, func(p *history.Prefs) {
		p.ShowThoughts = !p.ShowThoughts
	})
	if err != nil {
		return err
	}

	text := "💭 Reasoning display is now off."
	if p.ShowThoughts {
		text = "💭 Reasoning display is now on. I'll include the model's thinking in replies."
	}
	return b.replyWithKeyboard(ctx, msg.Chat.ID, text)
}

// handleButton handles reply-keyboard presses and model picks. It returns
// false when the text is not a known button, leaving the message to the
// conversation handler.
func (b *Bot) handleButton(ctx context.Context, msg *telegram.Message) (bool, error) {
	switch msg.Text {
	case btnChooseModel:
		b.setChoosingModel(msg.From.ID, true)
		err := b.reply(ctx, msg.Chat.ID, "Pick a model:", modelKeyboard())
		return true, err

	case btnBack:
		b.setChoosingModel(msg.From.ID, false)
		return true, b.replyWithKeyboard(ctx, msg.Chat.ID, "🏠 Main menu")

	case btnStatus:
		return true, b.sendStatus(ctx, msg)

	case btnMemory:
		return true, b.sendMemoryStatus(ctx, msg)

	case btnHelp:
		return true, b.replyWithKeyboard(ctx, msg.Chat.ID, helpText)

	case btnClearChat:
		return true, b.clearChat(ctx, msg)
	}

	if b.isChoosingModel(msg.From.ID) {
		return true, b.pickModel(ctx, msg)
	}
	return false, nil
}

// sendStatus reports the user's current model and settings.
func (b *Bot) sendStatus(ctx context.Context, msg *telegram.Message) error {
	p, err := b.store.GetPrefs(ctx, msg.From.ID)
	if err != nil {
		return err
	}

	thoughts := "off"
	if p.ShowThoughts {
		thoughts = "on"
	}
	text := fmt.Sprintf(
		"📊 Status\n\nModel: %s\nTemperature: %.1f\nMax tokens: %d\nReasoning display: %s",
		openrouter.DisplayName(p.Model), p.Temperature, p.MaxTokens, thoughts,
	)
	return b.replyWithKeyboard(ctx, msg.Chat.ID, text)
}

// sendMemoryStatus reports how much conversation context is stored.
func (b *Bot) sendMemoryStatus(ctx context.Context, msg *telegram.Message) error {
	n, err := b.store.Len(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}

	var text string
	if n == 0 {
		text = "💭 Memory is empty. This conversation starts fresh."
	} else {
		text = fmt.Sprintf(
			"💭 Memory holds %d message(s) (up to %d kept). Use \"%s\" to forget everything.",
			n, history.MaxMessages, btnClearChat,
		)
	}
	return b.replyWithKeyboard(ctx, msg.Chat.ID, text)
}

// clearChat purges the stored conversation.
func (b *Bot) clearChat(ctx context.Context, msg *telegram.Message) error {
	n, err := b.store.Len(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	if err := b.store.Purge(ctx, msg.Chat.ID); err != nil {
		return err
	}
	return b.replyWithKeyboard(ctx, msg.Chat.ID,
		fmt.Sprintf("✨ Conversation cleared, %d message(s) forgotten.", n))
}

// pickModel resolves a model-picker selection by display name.
func (b *Bot) pickModel(ctx context.Context, msg *telegram.Message) error {
	id, ok := openrouter.ModelByName(msg.Text)
	if !ok {
		return b.reply(ctx, msg.Chat.ID,
			fmt.Sprintf("I don't know the model %q. Pick one from the keyboard or go back.", msg.Text),
			modelKeyboard())
	}

	if _, err := b.store.UpdatePrefs(ctx, msg.From.ID, func(p *history.Prefs) {
		p.Model = id
	}); err != nil {
		return err
	}

	b.setChoosingModel(msg.From.ID, false)
	return b.replyWithKeyboard(ctx, msg.Chat.ID,
		fmt.Sprintf("✅ Model switched to %s.", openrouter.DisplayName(id)))
}

// reply sends a text message with the given keyboard, splitting when the
// text exceeds Telegram's message limit.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, keyboard *telegram.ReplyKeyboardMarkup) error {
	parts := telegram.SplitText(text, telegram.MaxMessageLength)
	for i, part := range parts {
		req := telegram.SendMessageRequest{ChatID: chatID, Text: part}
		// Attach the keyboard only to the final part.
		if i == len(parts)-1 {
			req.ReplyMarkup = keyboard
		}
		if _, err := b.client.SendMessage(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// replyWithKeyboard sends text with the main keyboard attached.
func (b *Bot) replyWithKeyboard(ctx context.Context, chatID int64, text string) error {
	return b.reply(ctx, chatID, text, mainKeyboard())
}
