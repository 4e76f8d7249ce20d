package activities

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"knowbase/internal/config"
	"knowbase/internal/ingest"
	"knowbase/internal/providers"
	"knowbase/internal/storage"
	"knowbase/internal/util"
	"knowbase/internal/vector"
)

type Activities struct {
	cfg       config.Config
	chunkRepo *storage.ChunkRepo
	providers *providers.Manager
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:       cfg,
		chunkRepo: storage.NewChunkRepo(db),
		providers: pm,
	}, nil
}

func (a *Activities) ListFilesActivity(ctx context.Context, in ListFilesInput) (ListFilesOutput, error) {
	_ = ctx
	entries, err := os.ReadDir(in.InputDir)
	if err != nil {
		return ListFilesOutput{}, fmt.Errorf("read input dir: %w", err)
	}
	paths := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".pdf") || strings.HasSuffix(name, ".txt") {
			paths = append(paths, filepath.Join(in.InputDir, e.Name()))
		}
	}
	sort.Strings(paths)
	return ListFilesOutput{Paths: paths}, nil
}

func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	_ = ctx
	text, err := ingest.ExtractText(in.Path)
	if err != nil {
		return ExtractTextOutput{}, err
	}
	return ExtractTextOutput{Text: text}, nil
}

func (a *Activities) ChunkTextActivity(ctx context.Context, in ChunkTextInput) (ChunkTextOutput, error) {
	_ = ctx
	if in.ChunkSize <= 0 {
		in.ChunkSize = a.cfg.ChunkSize
	}
	if in.ChunkOverlap < 0 || in.ChunkOverlap >= in.ChunkSize {
		in.ChunkOverlap = a.cfg.ChunkOverlap
	}
	chunks := ingest.BuildChunks(in.Domain, in.Filename, in.Text, in.ChunkSize, in.ChunkOverlap)
	return ChunkTextOutput{Chunks: chunks}, nil
}

// EmbedChunksActivity tries embedding providers in preferred order so one
// exhausted provider does not fail the whole file.
func (a *Activities) EmbedChunksActivity(ctx context.Context, in EmbedChunksInput) (EmbedChunksOutput, error) {
	var lastErr error
	for _, idx := range a.providers.PreferredEmbedOrder() {
		provider, ref := a.providers.EmbedProviderByIndex(idx)
		vectors, info, err := provider.Embed(ctx, providers.EmbedRequest{
			Operation: in.Operation,
			Inputs:    in.Inputs,
			Dimension: a.cfg.EmbedDim,
		})
		if err == nil && len(vectors) == len(in.Inputs) {
			return EmbedChunksOutput{Vectors: vectors, ProviderName: info.Name, Model: info.Model}, nil
		}
		if err != nil {
			log.Printf("[WARN] embed via %s failed (%s): %v", ref.Raw, providers.ClassifyError(err), err)
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no embedding provider produced %d vectors", len(in.Inputs))
	}
	return EmbedChunksOutput{}, lastErr
}

func (a *Activities) IndexChunksActivity(ctx context.Context, in IndexChunksInput) (IndexChunksOutput, error) {
	if len(in.Chunks) != len(in.Vectors) {
		return IndexChunksOutput{}, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(in.Chunks), len(in.Vectors))
	}
	records := make([]storage.ChunkRecord, 0, len(in.Chunks))
	for i, c := range in.Chunks {
		lit := vector.ToLiteral(in.Vectors[i])
		records = append(records, storage.ChunkRecord{
			DocID:      c.DocID,
			Collection: storage.CollectionName(c.Domain),
			Filename:   c.Filename,
			ChunkIndex: c.ChunkIndex,
			Text:       util.SanitizeText(c.Text),
			Embedding:  &lit,
		})
	}
	if err := a.chunkRepo.UpsertChunks(ctx, records); err != nil {
		return IndexChunksOutput{}, err
	}
	return IndexChunksOutput{Indexed: len(records)}, nil
}

func (a *Activities) WriteChunkArtifactsActivity(ctx context.Context, in WriteChunkArtifactsInput) error {
	_ = ctx
	rows := make([]any, 0, len(in.Chunks))
	for _, c := range in.Chunks {
		rows = append(rows, c)
	}
	path := filepath.Join(a.cfg.DataOutRoot, storage.CollectionName(in.Domain), in.Filename+".chunks.jsonl")
	return util.WriteJSONLinesAtomic(path, rows)
}
