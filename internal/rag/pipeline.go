package rag

import (
	"context"
	"fmt"
	"strings"

	"knowbase/internal/config"
	"knowbase/internal/models"
	"knowbase/internal/providers"
	"knowbase/internal/websearch"
)

// Pipeline is the read path: retrieve across all domain collections, then
// synthesize one structured answer. Constructed once per process with
// long-lived provider handles.
type Pipeline struct {
	cfg         config.Config
	retriever   *Retriever
	synthesizer *Synthesizer
}

func NewPipeline(cfg config.Config, pm *providers.Manager, searcher CollectionSearcher, search websearch.Provider) *Pipeline {
	embed := embedWithFailover(pm, cfg.EmbedDim)
	generate := generateWithFailover(pm)
	return &Pipeline{
		cfg:         cfg,
		retriever:   NewRetriever(embed, searcher, cfg.Domains),
		synthesizer: NewSynthesizer(generate, NewEnricher(search), cfg.Domains),
	}
}

func (p *Pipeline) Ask(ctx context.Context, question string) (models.Answer, error) {
	candidates, err := p.retriever.Retrieve(ctx, question, p.cfg.TopK)
	if err != nil {
		return models.Answer{}, err
	}
	return p.synthesizer.Synthesize(ctx, question, candidates)
}

// embedWithFailover tries embedding providers in preferred order until one
// returns a vector. The same ordering serves ingestion, so query and write
// paths stay on matching models in a healthy deployment.
func embedWithFailover(pm *providers.Manager, dim int) QueryEmbedFunc {
	return func(ctx context.Context, question string) ([]float32, error) {
		var lastErr error
		for _, idx := range pm.PreferredEmbedOrder() {
			provider, _ := pm.EmbedProviderByIndex(idx)
			vectors, _, err := provider.Embed(ctx, providers.EmbedRequest{
				Operation: "ask_query_embed",
				Inputs:    []string{question},
				Dimension: dim,
			})
			if err == nil && len(vectors) > 0 {
				return vectors[0], nil
			}
			if err != nil {
				lastErr = err
			}
		}
		return nil, fmt.Errorf("embedding providers unavailable: %w", lastErr)
	}
}

func generateWithFailover(pm *providers.Manager) GenerateFunc {
	return func(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
		var (
			resp    providers.GenerateResponse
			lastErr error
		)
		for _, idx := range pm.PreferredLLMOrder() {
			provider, _ := pm.LLMProviderByIndex(idx)
			var err error
			resp, _, err = provider.Generate(ctx, req)
			if err == nil && strings.TrimSpace(resp.Text) != "" {
				return resp, nil
			}
			if err != nil {
				lastErr = err
			}
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("all providers returned empty output")
		}
		return resp, lastErr
	}
}
