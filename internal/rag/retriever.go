package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"knowbase/internal/models"
	"knowbase/internal/storage"
	"knowbase/internal/vector"
)

// ErrNoIndex reports that no domain collection could be reached at all,
// typically because ingestion has never run or the index store is down. This
// is the one fatal ask-path error: every other failure degrades in place.
var ErrNoIndex = errors.New("no vector index available, run ingestion first")

// CollectionSearcher is the read side of the index store.
type CollectionSearcher interface {
	SearchCollection(ctx context.Context, collection string, queryVec []float32, topK int) ([]vector.ChunkMatch, error)
}

// QueryEmbedFunc embeds one question, typically with provider failover.
type QueryEmbedFunc func(ctx context.Context, question string) ([]float32, error)

// Retriever fans a question out across every domain collection and merges the
// per-domain top-k matches into one candidate list, in fixed domain order so
// downstream deduplication stays deterministic.
type Retriever struct {
	embed    QueryEmbedFunc
	searcher CollectionSearcher
	domains  []string
}

func NewRetriever(embed QueryEmbedFunc, searcher CollectionSearcher, domains []string) *Retriever {
	return &Retriever{embed: embed, searcher: searcher, domains: domains}
}

func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]models.Candidate, error) {
	if topK <= 0 {
		topK = 3
	}
	queryVec, err := r.embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	candidates := make([]models.Candidate, 0, topK*len(r.domains))
	failed := 0
	var lastErr error
	for _, domain := range r.domains {
		matches, err := r.searcher.SearchCollection(ctx, storage.CollectionName(domain), queryVec, topK)
		if err != nil {
			log.Printf("[WARN] retrieval failed for domain %q: %v", domain, err)
			failed++
			lastErr = err
			continue
		}
		for _, m := range matches {
			candidates = append(candidates, models.Candidate{
				DocID:    m.DocID,
				Filename: m.Filename,
				Domain:   domain,
				Score:    roundScore(m.Score),
				Text:     m.Text,
			})
		}
	}
	if len(r.domains) > 0 && failed == len(r.domains) {
		return nil, fmt.Errorf("%w: %v", ErrNoIndex, lastErr)
	}
	return candidates, nil
}

func roundScore(s float64) float64 {
	return math.Round(s*1000) / 1000
}
