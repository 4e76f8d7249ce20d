package util

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("a short paragraph", 1200, 150)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short paragraph" {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("some words in a sentence. ", 200)
	chunks := SplitText(text, 120, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 120 {
			t.Fatalf("chunk %d exceeds size: %d runes", i, len([]rune(c)))
		}
		if strings.TrimSpace(c) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	text := "first paragraph here.\n\nsecond paragraph here.\n\nthird paragraph here."
	chunks := SplitText(text, 30, 0)
	for i, c := range chunks {
		if strings.Contains(c, "\n\n") {
			t.Fatalf("chunk %d spans a paragraph break: %q", i, c)
		}
	}
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 100)
	a := SplitText(text, 100, 25)
	b := SplitText(text, 100, 25)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitTextCoversAllContent(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 80)
	chunks := SplitText(text, 150, 30)
	joined := strings.Join(chunks, " ")
	for _, word := range []string{"lorem", "ipsum", "dolor", "amet"} {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q missing from chunks", word)
		}
	}
}
