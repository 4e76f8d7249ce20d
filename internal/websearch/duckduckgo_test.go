package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDuckDuckGoSearchAbstract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("missing format=json: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Heading": "ESG Reporting",
			"AbstractText": "ESG reporting covers environmental, social and governance disclosures.",
			"AbstractURL": "https://example.org/esg",
			"RelatedTopics": [{"Text": "related topic text", "FirstURL": "https://example.org/rel"}]
		}`))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL)
	results, err := c.Search(context.Background(), "esg reporting", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "ESG Reporting" || results[0].URL != "https://example.org/esg" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestDuckDuckGoSearchFallsBackToRelatedTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Heading": "Topic",
			"AbstractText": "",
			"RelatedTopics": [{"Text": "first related", "FirstURL": "https://example.org/1"},
				{"Text": "second related", "FirstURL": "https://example.org/2"}]
		}`))
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL)
	results, err := c.Search(context.Background(), "anything", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 || results[0].Body != "first related" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestDuckDuckGoSearchEmptyQuery(t *testing.T) {
	c := NewDuckDuckGoClient("")
	if _, err := c.Search(context.Background(), "  ", 1); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestDuckDuckGoSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewDuckDuckGoClient(srv.URL)
	if _, err := c.Search(context.Background(), "q", 1); err == nil {
		t.Fatalf("expected error for 502 response")
	}
}
