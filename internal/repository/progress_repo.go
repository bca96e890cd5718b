package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-edu-platform/internal/model"
)

type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// Upsert writes the user's position in a video, relying on the
// (user_id, video_id) constraint to keep one row per pair.
func (r *ProgressRepository) Upsert(ctx context.Context, p model.VideoProgress) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO video_progress (id, user_id, video_id, progress_seconds, completed,
		                             completion_percentage, last_watched, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, video_id) DO UPDATE
		 SET progress_seconds = EXCLUDED.progress_seconds,
		     completed = EXCLUDED.completed,
		     completion_percentage = EXCLUDED.completion_percentage,
		     last_watched = EXCLUDED.last_watched`,
		p.ID, p.UserID, p.VideoID, p.ProgressSeconds, p.Completed,
		p.CompletionPercentage, time.Now().UTC(), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert video progress: %w", err)
	}
	return nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.VideoProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, video_id, progress_seconds, completed, completion_percentage,
		        last_watched, created_at
		 FROM video_progress WHERE user_id = $1 ORDER BY last_watched DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list video progress: %w", err)
	}
	defer rows.Close()

	progress := make([]model.VideoProgress, 0)
	for rows.Next() {
		var p model.VideoProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.VideoID, &p.ProgressSeconds, &p.Completed,
			&p.CompletionPercentage, &p.LastWatched, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
