package extract

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// textFromPlain reads a plain-text file. Non-UTF-8 content falls back to
// Windows-1251 (common for Russian-language documents), then Latin-1,
// which always decodes.
func textFromPlain(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract: read %s: %w", path, err)
	}

	if utf8.Valid(raw) {
		return truncate(string(raw)), nil
	}

	if decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw); err == nil {
		return truncate(string(decoded)), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("extract: decode %s: %w", path, err)
	}
	return truncate(string(decoded)), nil
}
