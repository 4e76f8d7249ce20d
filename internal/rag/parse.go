package rag

import (
	"encoding/json"
	"strings"
)

// modelAnswer mirrors the JSON contract the reasoning model is instructed to
// follow. The model's own citations are decoded but discarded: the
// synthesizer always substitutes the citations it computed from retrieval.
type modelAnswer struct {
	Answer           string            `json:"answer"`
	Confidence       float64           `json:"confidence"`
	MissingInfo      []string          `json:"missing_info"`
	Citations        []json.RawMessage `json:"citations"`
	ReasoningSummary string            `json:"reasoning_summary"`
	Suggestions      []string          `json:"suggestions"`
}

// modelResult is the parse-or-degrade outcome of one model invocation.
// Parsed is nil when the raw text was not valid JSON; callers then fall back
// to the raw text verbatim.
type modelResult struct {
	Parsed *modelAnswer
	Raw    string
}

func parseModelAnswer(raw string) modelResult {
	trimmed := stripCodeFence(strings.TrimSpace(raw))
	if trimmed == "" {
		return modelResult{Raw: raw}
	}
	var parsed modelAnswer
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return modelResult{Raw: raw}
	}
	return modelResult{Parsed: &parsed, Raw: raw}
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
