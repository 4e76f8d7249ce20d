package websearch

import "context"

type Result struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Provider is the external web-search capability used for gap enrichment.
// Implementations are best-effort: callers treat any error or empty result
// set as a per-query miss, never as a fatal condition.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
