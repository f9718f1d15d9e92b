// Package extract pulls analysable text out of downloaded files: plain
// text, DOCX, PDF, and images via OCR.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxTextLength bounds extracted text so a single document cannot blow the
// completion context.
const MaxTextLength = 10000

// truncationNote is appended when extracted text is cut at MaxTextLength.
const truncationNote = "\n\n... (file truncated)"

// Extractor dispatches file content extraction by extension.
type Extractor struct {
	ocr *OCR
}

// New creates an Extractor. ocr may be nil when no OCR engine is available;
// image extraction then reports the missing engine instead of text.
func New(ocr *OCR) *Extractor {
	return &Extractor{ocr: ocr}
}

// imageExts are the extensions routed to OCR.
var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".bmp": {}, ".tiff": {}, ".webp": {},
}

// Supported reports whether Text can produce content (rather than a
// description) for files with the given extension.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".docx", ".pdf":
		return true
	}
	_, ok := imageExts[strings.ToLower(ext)]
	return ok
}

// Text extracts the textual content of the file at path. Unsupported
// formats yield a human-readable description, not an error: the bot still
// wants to tell the model something about the file.
func (e *Extractor) Text(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt":
		return textFromPlain(path)
	case ".docx":
		return textFromDocx(path)
	case ".pdf":
		return textFromPDF(path)
	}

	if _, ok := imageExts[ext]; ok {
		if e.ocr == nil {
			return "[image file; no OCR engine available to read its text]", nil
		}
		return e.ocr.Recognize(ctx, path)
	}

	return fmt.Sprintf("[file of type %q; content extraction is not supported for this format]", ext), nil
}

// truncate cuts text at MaxTextLength and marks the cut.
func truncate(text string) string {
	if len(text) <= MaxTextLength {
		return text
	}
	return text[:MaxTextLength] + truncationNote
}
