package util

import "strings"

// Snippet returns the first maxRunes runes of s with newlines collapsed to
// single spaces, for context blocks and citation display.
func Snippet(s string, maxRunes int) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if maxRunes > 0 && len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return s
}
