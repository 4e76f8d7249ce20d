package storage

import (
	"context"
	"fmt"

	"knowbase/internal/models"
)

type FeedbackRepo struct {
	db *DB
}

func NewFeedbackRepo(db *DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) Insert(ctx context.Context, f models.Feedback) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO feedback (feedback_id, question, rating, comments)
VALUES ($1, $2, $3, $4)`, f.FeedbackID, f.Question, f.Rating, f.Comments)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepo) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT feedback_id, question, rating, comments, created_at
FROM feedback
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()
	out := make([]models.Feedback, 0, limit)
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.FeedbackID, &f.Question, &f.Rating, &f.Comments, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}
