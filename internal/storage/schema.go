package storage

import (
	"context"
	"fmt"
)

// EnsureSchema bootstraps the pgvector-backed index store. Collections are
// lazy: a domain collection exists as soon as one chunk carries its name, so
// nothing beyond the base tables needs creating per domain.
func (d *DB) EnsureSchema(ctx context.Context, embedDim int) error {
	if embedDim <= 0 {
		embedDim = 1536
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			doc_id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			filename TEXT NOT NULL,
			chunk_index INT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, embedDim),
		`CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks (collection)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			feedback_id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			rating INT NOT NULL,
			comments TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
