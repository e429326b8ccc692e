package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// CountWords returns the number of whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountChars returns the number of characters (runes), not bytes.
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// CountTokens provides a rough token count estimate.
// For production, use tiktoken-go for exact counts.
func CountTokens(text string) int {
	// Rough estimate: ~4 chars per token for English
	words := strings.Fields(text)
	return max(len(words)*4/3, 1)
}

// Truncate cuts text to at most maxChars runes. ok reports whether anything
// was removed.
func Truncate(text string, maxChars int) (out string, ok bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:maxChars]), true
}
