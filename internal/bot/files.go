package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tgaibot/tgaibot/internal/extract"
	"github.com/tgaibot/tgaibot/internal/provider"
	"github.com/tgaibot/tgaibot/internal/provider/openrouter"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

// handleDocument downloads an attached document, extracts its text, and
// asks the model to analyze it.
func (b *Bot) handleDocument(ctx context.Context, msg *telegram.Message) error {
	doc := msg.Document
	chatID := msg.Chat.ID

	if int64(doc.FileSize) > b.config.MaxFileSize {
		return b.replyWithKeyboard(ctx, chatID, fmt.Sprintf(
			"📄 The file is too large (%.1f MB). I can handle files up to %d MB.",
			float64(doc.FileSize)/(1<<20), b.config.MaxFileSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if !extract.Supported(ext) {
		return b.replyWithKeyboard(ctx, chatID, fmt.Sprintf(
			"📄 I can't read %s files yet. Send txt, pdf, docx, or an image.", ext))
	}

	if err := b.client.SendChatAction(ctx, chatID, "upload_document"); err != nil {
		b.logger.Debug("bot: send chat action failed", "chat_id", chatID, "error", err)
	}

	path, err := b.client.DownloadFile(ctx, doc.FileID, b.config.DownloadsDir, b.config.MaxFileSize)
	if err != nil {
		if errors.Is(err, telegram.ErrFileTooLarge) {
			return b.replyWithKeyboard(ctx, chatID,
				"📄 The file turned out larger than allowed, download aborted.")
		}
		return fmt.Errorf("bot: download document: %w", err)
	}
	defer b.removeDownload(path)

	text, err := b.extractor.Text(ctx, path)
	if err != nil {
		return fmt.Errorf("bot: extract %s: %w", doc.FileName, err)
	}

	prompt := documentPrompt(doc.FileName, msg.Caption, text)
	return b.converse(ctx, msg, prompt)
}

// handlePhoto analyzes a photo with a vision-capable model, falling back to
// OCR text extraction when no vision model succeeds.
func (b *Bot) handlePhoto(ctx context.Context, msg *telegram.Message) error {
	chatID := msg.Chat.ID

	// Telegram sends multiple sizes; the last is the largest.
	photo := msg.Photo[len(msg.Photo)-1]

	if err := b.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		b.logger.Debug("bot: send chat action failed", "chat_id", chatID, "error", err)
	}

	info, err := b.client.GetFile(ctx, photo.FileID)
	if err != nil {
		return fmt.Errorf("bot: get photo info: %w", err)
	}

	prompt := msg.Caption
	if prompt == "" {
		prompt = "Describe this image. If it contains text, transcribe it."
	}

	answer, model, err := b.analyzeImage(ctx, b.client.FileURL(info.FilePath), prompt)
	if err != nil {
		b.logger.Warn("bot: vision analysis failed, falling back to OCR",
			"chat_id", chatID, "error", err)
		return b.photoOCRFallback(ctx, msg, photo.FileID)
	}

	record := fmt.Sprintf("[photo] %s", prompt)
	if err := b.store.Append(ctx, chatID, provider.MessageRoleUser, record); err != nil {
		return err
	}
	if err := b.store.Append(ctx, chatID, provider.MessageRoleAssistant, answer); err != nil {
		return err
	}

	b.logger.Info("bot: photo analyzed", "chat_id", chatID, "model", model)
	return b.replyWithKeyboard(ctx, chatID, answer)
}

// analyzeImage tries each vision-capable model in order until one answers.
func (b *Bot) analyzeImage(ctx context.Context, imageURL, prompt string) (string, string, error) {
	req := provider.CompletionRequest{
		Messages: []provider.LLMMessage{{
			Role: provider.MessageRoleUser,
			Parts: []provider.ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: imageURL},
			},
		}},
		MaxTokens: 1024,
	}

	var lastErr error
	for _, model := range openrouter.VisionOrder() {
		req.Model = model

		start := time.Now()
		resp, err := b.llm.Complete(ctx, req)
		b.observeCompletion(model, time.Since(start), err)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		b.recordUsage(&resp.Usage)

		answer := stripThoughts(resp.Content)
		if answer != "" {
			return answer, resp.Model, nil
		}
	}
	if lastErr == nil {
		lastErr = errors.New("bot: all vision models returned empty answers")
	}
	return "", "", lastErr
}

// photoOCRFallback downloads the photo and runs plain text extraction.
func (b *Bot) photoOCRFallback(ctx context.Context, msg *telegram.Message, fileID string) error {
	path, err := b.client.DownloadFile(ctx, fileID, b.config.DownloadsDir, b.config.MaxFileSize)
	if err != nil {
		return fmt.Errorf("bot: download photo: %w", err)
	}
	defer b.removeDownload(path)

	text, err := b.extractor.Text(ctx, path)
	if err != nil {
		return fmt.Errorf("bot: extract photo text: %w", err)
	}

	prompt := fmt.Sprintf(
		"Vision analysis was unavailable. Text recognized from the user's image:\n\n%s\n\nAnswer the user based on this text.",
		text)
	if msg.Caption != "" {
		prompt += "\n\nThe user asks: " + msg.Caption
	}
	return b.converse(ctx, msg, prompt)
}

// handleUnsupportedMedia politely declines voice, audio, and video.
func (b *Bot) handleUnsupportedMedia(ctx context.Context, msg *telegram.Message) error {
	return b.replyWithKeyboard(ctx, msg.Chat.ID,
		"🎧 I can't process audio or video yet. Send text, a document, or a photo.")
}

// removeDownload deletes a processed download, logging failures.
func (b *Bot) removeDownload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("bot: remove processed download failed", "path", path, "error", err)
	}
}

// documentPrompt builds the analysis request sent to the model for an
// extracted document.
func documentPrompt(name, caption, text string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The user sent the file %q. Its content:\n\n%s\n\n", name, text)
	if caption != "" {
		fmt.Fprintf(&sb, "The user asks: %s", caption)
	} else {
		sb.WriteString("Briefly summarize the file and point out anything notable.")
	}
	return sb.String()
}
