package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DuckDuckGoClient queries the DuckDuckGo Instant Answer API. No key needed.
type DuckDuckGoClient struct {
	baseURL string
	client  *http.Client
}

func NewDuckDuckGoClient(baseURL string) *DuckDuckGoClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	return &DuckDuckGoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DuckDuckGoClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = 1
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/?"+q.Encode(), nil)
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("duckduckgo error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode duckduckgo response: %w", err)
	}

	out := make([]Result, 0, maxResults)
	if strings.TrimSpace(parsed.AbstractText) != "" {
		out = append(out, Result{Title: parsed.Heading, Body: parsed.AbstractText, URL: parsed.AbstractURL})
	}
	for _, t := range parsed.RelatedTopics {
		if len(out) >= maxResults {
			break
		}
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		out = append(out, Result{Title: parsed.Heading, Body: t.Text, URL: t.FirstURL})
	}
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}
