package rag

import (
	"context"
	"errors"
	"testing"

	"knowbase/internal/websearch"
)

func TestEnrichSkipsFailedTopics(t *testing.T) {
	search := &fakeSearch{
		results: map[string][]websearch.Result{
			"good topic": {{Title: "T", Body: "a short summary", URL: "https://example.org"}},
		},
		errs: map[string]error{"bad topic": errors.New("search down")},
	}
	e := NewEnricher(search)
	out := e.Enrich(context.Background(), []string{"bad topic", "good topic", "empty topic"})
	if len(out) != 1 {
		t.Fatalf("expected 1 enrichment, got %d: %+v", len(out), out)
	}
	if out[0] != "Auto-enriched info for 'good topic': a short summary" {
		t.Fatalf("unexpected enrichment: %q", out[0])
	}
}

func TestEnrichNilSearch(t *testing.T) {
	e := NewEnricher(nil)
	out := e.Enrich(context.Background(), []string{"anything"})
	if len(out) != 0 {
		t.Fatalf("expected no enrichments, got %+v", out)
	}
}

func TestEnrichTruncatesLongBodies(t *testing.T) {
	long := make([]byte, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'x')
	}
	search := &fakeSearch{results: map[string][]websearch.Result{
		"topic": {{Body: string(long)}},
	}}
	e := NewEnricher(search)
	out := e.Enrich(context.Background(), []string{"topic"})
	if len(out) != 1 {
		t.Fatalf("expected 1 enrichment, got %d", len(out))
	}
	prefix := "Auto-enriched info for 'topic': "
	if len(out[0]) != len(prefix)+200 {
		t.Fatalf("body not truncated to 200 runes: len=%d", len(out[0]))
	}
}
