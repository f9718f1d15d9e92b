package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// languagePriority is the order of tesseract language packs to try.
// Empty string means the engine's default language.
var languagePriority = []string{"rus+eng", "eng", ""}

// OCR runs the tesseract binary to read text out of images.
type OCR struct {
	binary string
}

// FindOCR locates a tesseract binary, looking first in extraDir (if set),
// then on PATH. Returns nil when no engine is installed — image extraction
// degrades gracefully without one.
func FindOCR(extraDir string) *OCR {
	if extraDir != "" {
		candidate := filepath.Join(extraDir, "tesseract")
		if path, err := exec.LookPath(candidate); err == nil {
			return &OCR{binary: path}
		}
	}
	if path, err := exec.LookPath("tesseract"); err == nil {
		return &OCR{binary: path}
	}
	return nil
}

// Recognize runs OCR over the image at path, trying language packs in
// priority order. The first run that produces non-empty text wins.
func (o *OCR) Recognize(ctx context.Context, path string) (string, error) {
	var lastErr error

	for _, lang := range languagePriority {
		args := []string{path, "stdout"}
		if lang != "" {
			args = append(args, "-l", lang)
		}

		cmd := exec.CommandContext(ctx, o.binary, args...)
		var out, stderr bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			// A missing language pack fails the run; the next priority
			// level may still work.
			lastErr = fmt.Errorf("extract: tesseract -l %q: %w: %s", lang, err, strings.TrimSpace(stderr.String()))
			continue
		}

		text := strings.TrimSpace(out.String())
		if text != "" {
			return truncate(text), nil
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", errors.New("extract: no text recognized in image")
}
