package telegram

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Telegram's hard limit on message text length.
const MaxMessageLength = 4096

// SplitText splits text into chunks that each fit within maxLen bytes,
// preferring line boundaries and keeping fenced code blocks (``` ... ```)
// intact when they have a chance to fit. A maxLen <= 0 disables splitting.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	lines := strings.Split(text, "\n")

	var chunks []string
	var current strings.Builder

	inCodeBlock := false

	for _, line := range lines {
		lineWithNewline := line + "\n"

		isFence := strings.HasPrefix(strings.TrimSpace(line), "```")

		// Track fenced code block boundaries. The flag is updated after the
		// overflow check so the closing fence still counts as "inside".
		wasInCodeBlock := inCodeBlock
		if isFence {
			inCodeBlock = !inCodeBlock
		}

		if current.Len()+len(lineWithNewline) > maxLen {
			// Inside a code block (including the closing fence), keep
			// accumulating while the block still has a chance to fit
			// (< 2x limit as a safety valve).
			stillInBlock := wasInCodeBlock || (isFence && !inCodeBlock)
			if stillInBlock && current.Len() < maxLen*2 {
				current.WriteString(lineWithNewline)
				continue
			}

			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}

			// A single line longer than maxLen is force-split on rune
			// boundaries.
			if len(lineWithNewline) > maxLen {
				chunks = append(chunks, forceSplit(line, maxLen)...)
				continue
			}
		}

		current.WriteString(lineWithNewline)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}

	return chunks
}

// forceSplit breaks a single long line into chunks of at most maxLen bytes,
// never splitting inside a UTF-8 rune.
func forceSplit(line string, maxLen int) []string {
	var parts []string
	for len(line) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLen
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return parts
}

// TruncateUTF8 truncates s to at most maxBytes, walking back to a valid
// UTF-8 rune boundary to avoid producing invalid UTF-8.
func TruncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
