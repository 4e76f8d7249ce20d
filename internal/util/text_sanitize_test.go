package util

import "testing"

func TestSanitizeTextRemovesNulAndControls(t *testing.T) {
	in := "ab\x00cd\x01\x02\n\txy"
	out := SanitizeText(in)
	if out != "abcd\n\txy" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}

func TestSnippetFlattensNewlines(t *testing.T) {
	in := "first line\nsecond line\r\nthird line"
	out := Snippet(in, 300)
	if out != "first line second line  third line" {
		t.Fatalf("unexpected snippet: %q", out)
	}
}

func TestSnippetTruncatesToRunes(t *testing.T) {
	out := Snippet("abcdefghij", 4)
	if out != "abcd" {
		t.Fatalf("unexpected truncation: %q", out)
	}
}
