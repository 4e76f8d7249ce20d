package rag

import (
	"context"
	"fmt"
	"log"

	"knowbase/internal/util"
	"knowbase/internal/websearch"
)

// Enricher fetches short web-search summaries for gaps the model reported.
// Strictly best-effort: a topic that cannot be enriched is logged and
// dropped, never surfaced as an error.
type Enricher struct {
	search websearch.Provider
}

func NewEnricher(search websearch.Provider) *Enricher {
	return &Enricher{search: search}
}

func (e *Enricher) Enrich(ctx context.Context, topics []string) []string {
	out := make([]string, 0, len(topics))
	if e == nil || e.search == nil {
		return out
	}
	for _, topic := range topics {
		results, err := e.search.Search(ctx, topic, 1)
		if err != nil {
			log.Printf("[WARN] could not enrich topic %q: %v", topic, err)
			continue
		}
		if len(results) == 0 {
			log.Printf("[WARN] no search results for topic %q", topic)
			continue
		}
		out = append(out, fmt.Sprintf("Auto-enriched info for '%s': %s", topic, util.Snippet(results[0].Body, 200)))
	}
	return out
}
