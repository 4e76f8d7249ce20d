package ingest

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"knowbase/internal/config"
	"knowbase/internal/models"
	"knowbase/internal/providers"
	"knowbase/internal/storage"
	"knowbase/internal/util"
	"knowbase/internal/vector"

	"github.com/google/uuid"
)

// ChunkWriter is the slice of the index store the ingestor needs.
type ChunkWriter interface {
	UpsertChunks(ctx context.Context, chunks []storage.ChunkRecord) error
}

// Ingestor drives extract -> chunk -> embed -> upsert for batches of files.
type Ingestor struct {
	cfg      config.Config
	chunks   ChunkWriter
	embedder providers.EmbeddingProvider
}

func NewIngestor(cfg config.Config, chunks ChunkWriter, embedder providers.EmbeddingProvider) *Ingestor {
	return &Ingestor{cfg: cfg, chunks: chunks, embedder: embedder}
}

// BuildChunks splits extracted text and assigns per-chunk identity: the
// chunk index within the file plus a fresh globally unique doc_id that
// becomes the storage key.
func BuildChunks(domain, filename, text string, chunkSize, overlap int) []models.DocumentChunk {
	parts := util.SplitText(text, chunkSize, overlap)
	chunks := make([]models.DocumentChunk, 0, len(parts))
	for idx, part := range parts {
		part = util.SanitizeText(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, models.DocumentChunk{
			DocID:      uuid.NewString(),
			Filename:   filename,
			ChunkIndex: idx,
			Text:       part,
			Domain:     domain,
		})
	}
	return chunks
}

// IngestFiles processes each file independently: failures are logged and
// skipped so one bad file never aborts the batch. Returns the running chunk
// total across the call.
func (ing *Ingestor) IngestFiles(ctx context.Context, paths []string, domain string) (int, error) {
	if domain == "" {
		domain = "general"
	}
	total := 0
	for _, path := range paths {
		n, err := ing.IngestFile(ctx, path, domain)
		if err != nil {
			log.Printf("[WARN] skipping %s: %v", path, err)
			continue
		}
		log.Printf("[INFO] indexed %d chunks from %s into %s", n, filepath.Base(path), storage.CollectionName(domain))
		total += n
	}
	return total, nil
}

func (ing *Ingestor) IngestFile(ctx context.Context, path, domain string) (int, error) {
	text, err := ExtractText(path)
	if err != nil {
		return 0, err
	}
	chunks := BuildChunks(domain, filepath.Base(path), text, ing.cfg.ChunkSize, ing.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, util.ErrNoExtractableText
	}
	if err := ing.IndexChunks(ctx, chunks); err != nil {
		return 0, err
	}
	if err := ing.writeArtifacts(domain, filepath.Base(path), chunks); err != nil {
		log.Printf("[WARN] write artifacts for %s: %v", path, err)
	}
	return len(chunks), nil
}

// IndexChunks embeds chunk texts and upserts them into the domain collection.
func (ing *Ingestor) IndexChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	inputs := make([]string, 0, len(chunks))
	for _, c := range chunks {
		inputs = append(inputs, c.Text)
	}
	vectors, _, err := ing.embedder.Embed(ctx, providers.EmbedRequest{
		Operation: "ingest_embed",
		Inputs:    inputs,
		Dimension: ing.cfg.EmbedDim,
	})
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}
	records := make([]storage.ChunkRecord, 0, len(chunks))
	for i, c := range chunks {
		lit := vector.ToLiteral(vectors[i])
		records = append(records, storage.ChunkRecord{
			DocID:      c.DocID,
			Collection: storage.CollectionName(c.Domain),
			Filename:   c.Filename,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Embedding:  &lit,
		})
	}
	return ing.chunks.UpsertChunks(ctx, records)
}

func (ing *Ingestor) writeArtifacts(domain, filename string, chunks []models.DocumentChunk) error {
	rows := make([]any, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, c)
	}
	path := filepath.Join(ing.cfg.DataOutRoot, storage.CollectionName(domain), filename+".chunks.jsonl")
	return util.WriteJSONLinesAtomic(path, rows)
}
