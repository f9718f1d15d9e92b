package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPDFPages caps how many pages are read from a single PDF.
const MaxPDFPages = 50

// textFromPDF extracts the plain text of up to MaxPDFPages pages.
func textFromPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	pages := reader.NumPage()
	clipped := false
	if pages > MaxPDFPages {
		pages = MaxPDFPages
		clipped = true
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not lose the rest of the
			// document.
			continue
		}
		sb.WriteString(content)
		sb.WriteByte('\n')

		if sb.Len() > MaxTextLength {
			break
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "[PDF contains no extractable text; it may be scanned images]", nil
	}
	if clipped {
		text += fmt.Sprintf("\n\n... (only the first %d pages were read)", MaxPDFPages)
	}
	return truncate(text), nil
}
