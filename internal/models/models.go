package models

import "time"

// DocumentChunk is the unit of embedding and retrieval. Chunks are immutable
// once indexed; re-ingesting a file creates fresh doc_ids rather than
// overwriting existing rows.
type DocumentChunk struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_id"`
	Text       string `json:"text"`
	Domain     string `json:"domain"`
}

// Candidate is a chunk returned by a similarity query, tagged with the domain
// collection it came from. Ephemeral: produced per question, never persisted.
type Candidate struct {
	DocID    string  `json:"doc_id"`
	Filename string  `json:"filename"`
	Domain   string  `json:"domain"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
	Page     *int    `json:"page,omitempty"`
}

// Citation is the caller-facing projection of a Candidate, deduplicated by
// filename within one answer.
type Citation struct {
	DocID    string  `json:"doc_id"`
	Filename string  `json:"filename"`
	Domain   string  `json:"domain"`
	Page     *int    `json:"page,omitempty"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`
}

// Answer is the structured response returned by the ask pipeline.
type Answer struct {
	Answer           string     `json:"answer"`
	Confidence       float64    `json:"confidence"`
	MissingInfo      []string   `json:"missing_info"`
	Citations        []Citation `json:"citations"`
	ReasoningSummary string     `json:"reasoning_summary"`
	Suggestions      []string   `json:"suggestions"`
}

type Feedback struct {
	FeedbackID string    `json:"feedback_id"`
	Question   string    `json:"question"`
	Rating     int       `json:"rating"`
	Comments   string    `json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
