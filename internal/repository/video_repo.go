package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-edu-platform/internal/model"
)

const videoColumns = `id, title, description, video_url, thumbnail_url, duration, category_id,
	subject_id, teacher_id, is_published, ord, views_count, created_at, updated_at`

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func scanVideo(row pgx.Row) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL, &v.Duration,
		&v.CategoryID, &v.SubjectID, &v.TeacherID, &v.IsPublished, &v.Order, &v.ViewsCount,
		&v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *VideoRepository) CreateCategory(ctx context.Context, c model.VideoCategory) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO video_categories (id, name, description, icon, ord, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.Icon, c.Order, c.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create video category: %w", err)
	}
	return nil
}

func (r *VideoRepository) ListCategories(ctx context.Context) ([]model.VideoCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, icon, ord, created_at FROM video_categories ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("list video categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.VideoCategory, 0)
	for rows.Next() {
		var c model.VideoCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Order, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *VideoRepository) Create(ctx context.Context, v model.Video) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO videos (id, title, description, video_url, thumbnail_url, duration, category_id,
		                     subject_id, teacher_id, is_published, ord, views_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		v.ID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.Duration, v.CategoryID,
		v.SubjectID, v.TeacherID, v.IsPublished, v.Order, v.ViewsCount, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (model.Video, error) {
	v, err := scanVideo(r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("find video: %w", err)
	}
	return v, nil
}

// List returns published videos matching the filter, ordered for display.
func (r *VideoRepository) List(ctx context.Context, f model.VideoFilter) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+` FROM videos
		 WHERE is_published
		   AND ($1 = '' OR category_id = $1::uuid)
		   AND ($2 = '' OR subject_id = $2::uuid)
		   AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
		 ORDER BY ord ASC, created_at DESC`,
		f.CategoryID, f.SubjectID, f.Search)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) Update(ctx context.Context, v model.Video) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET title = $2, description = $3, video_url = $4, thumbnail_url = $5,
		        duration = $6, category_id = $7, subject_id = $8, teacher_id = $9,
		        is_published = $10, ord = $11, updated_at = $12
		 WHERE id = $1`,
		v.ID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.Duration, v.CategoryID,
		v.SubjectID, v.TeacherID, v.IsPublished, v.Order, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

// IncrementViews bumps the view counter atomically in the database; no
// in-process coordination is needed.
func (r *VideoRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}
