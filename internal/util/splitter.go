package util

import "strings"

// defaultSeparators orders boundaries largest-first: paragraph, line,
// sentence, word, then single characters as the last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitText splits text into overlapping chunks of at most chunkSize runes.
// It recursively prefers the largest boundary that keeps pieces under the
// limit and carries roughly overlap runes of trailing context into the next
// chunk. Output is deterministic for identical input and parameters.
func SplitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return splitRecursive(text, defaultSeparators, chunkSize, overlap)
}

func splitRecursive(text string, separators []string, chunkSize, overlap int) []string {
	sep := separators[len(separators)-1]
	var remaining []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitKeepSeparator(text, sep)

	out := make([]string, 0)
	pending := make([]string, 0)
	for _, s := range splits {
		if runeLen(s) < chunkSize {
			pending = append(pending, s)
			continue
		}
		if len(pending) > 0 {
			out = append(out, mergeSplits(pending, chunkSize, overlap)...)
			pending = pending[:0]
		}
		if len(remaining) == 0 {
			out = append(out, strings.TrimSpace(s))
		} else {
			out = append(out, splitRecursive(s, remaining, chunkSize, overlap)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, mergeSplits(pending, chunkSize, overlap)...)
	}
	return out
}

// splitKeepSeparator splits on sep, keeping the separator attached to the
// preceding piece so no characters are dropped. An empty sep splits into
// individual runes for the character-level fallback.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// mergeSplits packs consecutive small pieces into chunks of at most chunkSize
// runes, re-queueing trailing pieces so consecutive chunks share about
// overlap runes of context.
func mergeSplits(splits []string, chunkSize, overlap int) []string {
	out := make([]string, 0)
	current := make([]string, 0)
	total := 0
	for _, s := range splits {
		l := runeLen(s)
		if total+l > chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				out = append(out, doc)
			}
			for total > overlap || (total+l > chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, s)
		total += l
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		out = append(out, doc)
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
