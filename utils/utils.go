package utils

import (
	"regexp"
	"strings"
)

var delimiters = regexp.MustCompile(`[,\n]`)

// SplitTokens splits text on commas and newlines, trims each token and drops
// empty ones. Order is preserved.
func SplitTokens(text string) []string {
	parts := delimiters.Split(strings.TrimSpace(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// FlattenLine replaces embedded newlines with spaces.
func FlattenLine(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// IsBlank reports whether text is empty or whitespace only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Truncate shortens text to at most n runes, for log fields.
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
