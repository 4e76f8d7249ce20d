package storage

import (
	"context"
	"fmt"
)

// CollectionName maps a domain to its index collection.
func CollectionName(domain string) string {
	return "docs_" + domain
}

type ChunkRecord struct {
	DocID      string
	Collection string
	Filename   string
	ChunkIndex int
	Text       string
	Embedding  *string
}

type ChunkRepo struct {
	db *DB
}

func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// UpsertChunks writes chunk rows keyed by doc_id. Fresh doc_ids are assigned
// per ingestion, so re-ingesting a file adds rows instead of replacing them;
// the conflict clause only guards against activity retries replaying a batch.
func (r *ChunkRepo) UpsertChunks(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert chunks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, c := range chunks {
		_, err := tx.Exec(ctx, `
INSERT INTO chunks (doc_id, collection, filename, chunk_index, text, embedding)
VALUES ($1, $2, $3, $4, $5, CASE WHEN $6::text IS NULL THEN NULL ELSE $6::vector END)
ON CONFLICT (doc_id)
DO UPDATE SET
  text = EXCLUDED.text,
  embedding = COALESCE(EXCLUDED.embedding, chunks.embedding)`,
			c.DocID, c.Collection, c.Filename, c.ChunkIndex, c.Text, c.Embedding,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.DocID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

// CountByCollection returns per-collection chunk counts for /stats.
func (r *ChunkRepo) CountByCollection(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT collection, COUNT(*) FROM chunks GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var collection string
		var n int
		if err := rows.Scan(&collection, &n); err != nil {
			return nil, fmt.Errorf("scan chunk count: %w", err)
		}
		out[collection] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk counts: %w", err)
	}
	return out, nil
}
