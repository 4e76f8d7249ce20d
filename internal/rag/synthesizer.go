package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"knowbase/internal/models"
	"knowbase/internal/providers"
	"knowbase/internal/util"
)

const (
	snippetRunes = 300

	noInfoAnswer      = "No relevant information found."
	noInfoMissing     = "No matching content found in the uploaded documents."
	noInfoSuggestion  = "Upload more relevant documents."
	fallbackReasoning = "Partial fallback response."
)

// GenerateFunc runs one reasoning-model completion, typically with provider
// failover behind it.
type GenerateFunc func(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error)

// Synthesizer turns retrieval candidates into one normalized structured
// answer: deduplicated citations, a repaired model response, gap enrichment
// and a domain coverage note.
type Synthesizer struct {
	generate GenerateFunc
	enricher *Enricher
	domains  []string
}

func NewSynthesizer(generate GenerateFunc, enricher *Enricher, domains []string) *Synthesizer {
	return &Synthesizer{generate: generate, enricher: enricher, domains: domains}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, candidates []models.Candidate) (models.Answer, error) {
	if len(candidates) == 0 {
		return models.Answer{
			Answer:           noInfoAnswer,
			Confidence:       0.0,
			MissingInfo:      []string{noInfoMissing},
			Citations:        []models.Citation{},
			ReasoningSummary: "No context retrieved.",
			Suggestions:      []string{noInfoSuggestion},
		}, nil
	}

	citations, contextBlocks := dedupeCandidates(candidates)

	resp, err := s.generate(ctx, providers.GenerateRequest{
		Operation: "ask_answer",
		System:    systemPrompt,
		Prompt:    buildUserPrompt(question, contextBlocks),
	})
	if err != nil {
		return models.Answer{}, fmt.Errorf("reasoning model unavailable: %w", err)
	}

	answer := normalizeModelResult(parseModelAnswer(resp.Text))

	if len(answer.MissingInfo) > 0 && s.enricher != nil {
		log.Printf("[INFO] running auto-enrichment for %d missing topic(s)", len(answer.MissingInfo))
		answer.Suggestions = append(answer.Suggestions, s.enricher.Enrich(ctx, answer.MissingInfo)...)
	}

	if note := s.coverageNote(citations); note != "" {
		answer.ReasoningSummary += note
	}

	answer.Confidence = clampConfidence(answer.Confidence, len(answer.MissingInfo) > 0)
	answer.Citations = citations
	return answer, nil
}

// dedupeCandidates keeps the first candidate per filename in retrieval rank
// order; later matches for an already-seen filename are discarded even when
// they score higher. Each retained candidate yields one citation and one
// context block.
func dedupeCandidates(candidates []models.Candidate) ([]models.Citation, []string) {
	seen := make(map[string]struct{}, len(candidates))
	citations := make([]models.Citation, 0, len(candidates))
	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Filename]; dup {
			continue
		}
		seen[c.Filename] = struct{}{}
		snippet := util.Snippet(c.Text, snippetRunes)
		citations = append(citations, models.Citation{
			DocID:    c.DocID,
			Filename: c.Filename,
			Domain:   c.Domain,
			Page:     c.Page,
			Score:    c.Score,
			Snippet:  snippet,
		})
		blocks = append(blocks, fmt.Sprintf("[%s | %s | score=%.3f] → %s", c.Filename, c.Domain, c.Score, snippet))
	}
	return citations, blocks
}

// normalizeModelResult folds both parse branches into one answer shape. A
// malformed response degrades to the raw text verbatim; the parse error is
// never surfaced to the caller.
func normalizeModelResult(result modelResult) models.Answer {
	if result.Parsed == nil {
		log.Printf("[WARN] model response was not valid JSON, using raw text fallback")
		return models.Answer{
			Answer:           strings.TrimSpace(result.Raw),
			Confidence:       0.5,
			MissingInfo:      []string{},
			ReasoningSummary: fallbackReasoning,
			Suggestions:      []string{},
		}
	}
	p := result.Parsed
	answer := models.Answer{
		Answer:           p.Answer,
		Confidence:       p.Confidence,
		MissingInfo:      p.MissingInfo,
		ReasoningSummary: p.ReasoningSummary,
		Suggestions:      p.Suggestions,
	}
	if answer.MissingInfo == nil {
		answer.MissingInfo = []string{}
	}
	if answer.Suggestions == nil {
		answer.Suggestions = []string{}
	}
	return answer
}

// coverageNote names every known domain absent from the final citations.
func (s *Synthesizer) coverageNote(citations []models.Citation) string {
	covered := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		covered[c.Domain] = struct{}{}
	}
	missing := make([]string, 0, len(s.domains))
	for _, d := range s.domains {
		if _, ok := covered[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf(" No documents found for domain(s): %s.", strings.Join(missing, ", "))
}

// clampConfidence bounds confidence to [0,1] and enforces the instruction
// contract's cap of 0.6 whenever the model reported gaps, since the model
// itself cannot be trusted to honor it.
func clampConfidence(c float64, hasGaps bool) float64 {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	if hasGaps && c > 0.6 {
		c = 0.6
	}
	return c
}
