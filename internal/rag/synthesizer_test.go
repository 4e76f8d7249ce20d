package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"knowbase/internal/models"
	"knowbase/internal/providers"
	"knowbase/internal/websearch"
)

type fakeSearch struct {
	results map[string][]websearch.Result
	errs    map[string]error
}

func (f *fakeSearch) Search(_ context.Context, query string, _ int) ([]websearch.Result, error) {
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func staticGenerate(text string) GenerateFunc {
	return func(_ context.Context, _ providers.GenerateRequest) (providers.GenerateResponse, error) {
		return providers.GenerateResponse{Text: text}, nil
	}
}

func allDomainCandidates() []models.Candidate {
	out := make([]models.Candidate, 0, 4)
	for _, d := range testDomains {
		out = append(out, models.Candidate{
			DocID:    d + "-1",
			Filename: d + ".txt",
			Domain:   d,
			Score:    0.8,
			Text:     "text from " + d,
		})
	}
	return out
}

func TestSynthesizeEmptyCandidates(t *testing.T) {
	s := NewSynthesizer(staticGenerate("{}"), nil, testDomains)
	answer, err := s.Synthesize(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Answer != "No relevant information found." {
		t.Fatalf("unexpected answer: %q", answer.Answer)
	}
	if answer.Confidence != 0.0 {
		t.Fatalf("expected zero confidence, got %v", answer.Confidence)
	}
	if answer.ReasoningSummary != "No context retrieved." {
		t.Fatalf("unexpected reasoning: %q", answer.ReasoningSummary)
	}
	if len(answer.MissingInfo) != 1 || answer.MissingInfo[0] != "No matching content found in the uploaded documents." {
		t.Fatalf("unexpected missing info: %+v", answer.MissingInfo)
	}
	if len(answer.Suggestions) != 1 || answer.Suggestions[0] != "Upload more relevant documents." {
		t.Fatalf("unexpected suggestions: %+v", answer.Suggestions)
	}
	if answer.Citations == nil || len(answer.Citations) != 0 {
		t.Fatalf("citations must be an empty list")
	}
}

func TestSynthesizeValidModelResponse(t *testing.T) {
	raw := `{"answer":"remote work is allowed 2 days a week","confidence":0.9,"missing_info":[],"citations":[],"reasoning_summary":"Grounded in policy doc.","suggestions":[]}`
	s := NewSynthesizer(staticGenerate(raw), nil, testDomains)
	answer, err := s.Synthesize(context.Background(), "remote policy?", allDomainCandidates())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Answer != "remote work is allowed 2 days a week" {
		t.Fatalf("unexpected answer: %q", answer.Answer)
	}
	if answer.Confidence != 0.9 {
		t.Fatalf("confidence changed unexpectedly: %v", answer.Confidence)
	}
	if len(answer.Citations) != 4 {
		t.Fatalf("expected one citation per domain, got %d", len(answer.Citations))
	}
	if strings.Contains(answer.ReasoningSummary, "No documents found") {
		t.Fatalf("coverage note added despite full coverage: %q", answer.ReasoningSummary)
	}
}

func TestSynthesizeMalformedModelResponse(t *testing.T) {
	s := NewSynthesizer(staticGenerate("plain prose answer"), nil, testDomains)
	answer, err := s.Synthesize(context.Background(), "q", allDomainCandidates())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Answer != "plain prose answer" {
		t.Fatalf("raw text not preserved: %q", answer.Answer)
	}
	if answer.Confidence != 0.5 {
		t.Fatalf("expected degraded confidence 0.5, got %v", answer.Confidence)
	}
	if answer.ReasoningSummary != "Partial fallback response." {
		t.Fatalf("unexpected reasoning: %q", answer.ReasoningSummary)
	}
	if len(answer.Citations) != 4 {
		t.Fatalf("citations must still come from retrieval, got %d", len(answer.Citations))
	}
}

func TestSynthesizeDedupesByFilename(t *testing.T) {
	candidates := []models.Candidate{
		{DocID: "a1", Filename: "report.txt", Domain: "finance", Score: 0.9, Text: "first"},
		{DocID: "a2", Filename: "report.txt", Domain: "finance", Score: 0.95, Text: "second"},
		{DocID: "b1", Filename: "other.txt", Domain: "finance", Score: 0.5, Text: "third"},
	}
	s := NewSynthesizer(staticGenerate(`{"answer":"x","confidence":0.7}`), nil, []string{"finance"})
	answer, err := s.Synthesize(context.Background(), "q", candidates)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("expected 2 citations after dedupe, got %d", len(answer.Citations))
	}
	// First occurrence wins even though the duplicate scored higher.
	if answer.Citations[0].DocID != "a1" {
		t.Fatalf("expected first occurrence kept, got %s", answer.Citations[0].DocID)
	}
}

func TestSynthesizeCoverageNote(t *testing.T) {
	candidates := []models.Candidate{
		{DocID: "f1", Filename: "f.txt", Domain: "finance", Score: 0.8, Text: "t"},
		{DocID: "g1", Filename: "g.txt", Domain: "general", Score: 0.8, Text: "t"},
	}
	s := NewSynthesizer(staticGenerate(`{"answer":"x","confidence":0.7,"reasoning_summary":"Base."}`), nil, testDomains)
	answer, err := s.Synthesize(context.Background(), "q", candidates)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	want := "Base. No documents found for domain(s): hr, sustainability."
	if answer.ReasoningSummary != want {
		t.Fatalf("unexpected reasoning: %q", answer.ReasoningSummary)
	}
}

func TestSynthesizeClampsConfidenceWithGaps(t *testing.T) {
	raw := `{"answer":"x","confidence":0.95,"missing_info":["2024 revenue"]}`
	search := &fakeSearch{results: map[string][]websearch.Result{}}
	s := NewSynthesizer(staticGenerate(raw), NewEnricher(search), testDomains)
	answer, err := s.Synthesize(context.Background(), "q", allDomainCandidates())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Confidence != 0.6 {
		t.Fatalf("expected confidence capped at 0.6, got %v", answer.Confidence)
	}
}

func TestSynthesizeClampsConfidenceBounds(t *testing.T) {
	s := NewSynthesizer(staticGenerate(`{"answer":"x","confidence":3.5}`), nil, testDomains)
	answer, err := s.Synthesize(context.Background(), "q", allDomainCandidates())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if answer.Confidence != 1.0 {
		t.Fatalf("expected confidence clamped to 1.0, got %v", answer.Confidence)
	}
}

func TestSynthesizeAppendsEnrichment(t *testing.T) {
	raw := `{"answer":"x","confidence":0.4,"missing_info":["carbon targets"],"suggestions":["read the esg report"]}`
	search := &fakeSearch{results: map[string][]websearch.Result{
		"carbon targets": {{Title: "Carbon", Body: "Carbon targets are emission reduction goals.", URL: "https://example.org"}},
	}}
	s := NewSynthesizer(staticGenerate(raw), NewEnricher(search), testDomains)
	answer, err := s.Synthesize(context.Background(), "q", allDomainCandidates())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(answer.Suggestions) != 2 {
		t.Fatalf("expected model suggestion plus enrichment, got %+v", answer.Suggestions)
	}
	want := "Auto-enriched info for 'carbon targets': Carbon targets are emission reduction goals."
	if answer.Suggestions[1] != want {
		t.Fatalf("unexpected enrichment: %q", answer.Suggestions[1])
	}
}

func TestSynthesizeGenerateFailureIsFatal(t *testing.T) {
	failing := func(_ context.Context, _ providers.GenerateRequest) (providers.GenerateResponse, error) {
		return providers.GenerateResponse{}, errors.New("all providers down")
	}
	s := NewSynthesizer(failing, nil, testDomains)
	_, err := s.Synthesize(context.Background(), "q", allDomainCandidates())
	if err == nil || !strings.Contains(err.Error(), "reasoning model unavailable") {
		t.Fatalf("expected fatal model error, got %v", err)
	}
}

func TestSynthesizeContextBlockFormat(t *testing.T) {
	var captured providers.GenerateRequest
	capture := func(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
		captured = req
		return providers.GenerateResponse{Text: `{"answer":"x","confidence":0.5}`}, nil
	}
	candidates := []models.Candidate{
		{DocID: "f1", Filename: "budget.txt", Domain: "finance", Score: 0.875, Text: "line one\nline two"},
	}
	s := NewSynthesizer(capture, nil, []string{"finance"})
	if _, err := s.Synthesize(context.Background(), "what is the budget?", candidates); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	wantBlock := fmt.Sprintf("[budget.txt | finance | score=%.3f] → line one line two", 0.875)
	if !strings.Contains(captured.Prompt, wantBlock) {
		t.Fatalf("context block missing from prompt:\n%s", captured.Prompt)
	}
	if !strings.HasPrefix(captured.Prompt, "Question: what is the budget?") {
		t.Fatalf("prompt must lead with the question:\n%s", captured.Prompt)
	}
	if captured.System == "" {
		t.Fatalf("system instructions not set")
	}
}
