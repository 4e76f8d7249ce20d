package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ChunkMatch is one similarity hit from a domain collection.
type ChunkMatch struct {
	DocID      string
	Filename   string
	ChunkIndex int
	Text       string
	Score      float64
}

type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Searcher struct {
	q Queryer
}

func NewSearcher(q Queryer) *Searcher {
	return &Searcher{q: q}
}

// SearchCollection returns the topK nearest chunks in one collection.
// Score convention: 1 - cosine distance, higher is better.
func (s *Searcher) SearchCollection(ctx context.Context, collection string, queryVec []float32, topK int) ([]ChunkMatch, error) {
	if topK <= 0 {
		topK = 3
	}
	vecLiteral := ToLiteral(queryVec)

	query := `
SELECT doc_id,
       filename,
       chunk_index,
       text,
       1 - (embedding <=> $2::vector) AS score
FROM chunks
WHERE collection = $1
  AND embedding IS NOT NULL
ORDER BY embedding <=> $2::vector
LIMIT $3`

	rows, err := s.q.Query(ctx, query, collection, vecLiteral, topK)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	results := make([]ChunkMatch, 0, topK)
	for rows.Next() {
		var m ChunkMatch
		if err := rows.Scan(&m.DocID, &m.Filename, &m.ChunkIndex, &m.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("scan chunk match: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk matches: %w", err)
	}
	return results, nil
}

func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
