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

const subjectColumns = `id, name, description, icon_url, ord, is_active, created_at, updated_at`

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func scanSubject(row pgx.Row) (model.Subject, error) {
	var s model.Subject
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.IconURL, &s.Order, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *SubjectRepository) Create(ctx context.Context, s model.Subject) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subjects (id, name, description, icon_url, ord, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Description, s.IconURL, s.Order, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

func (r *SubjectRepository) FindByID(ctx context.Context, id string) (model.Subject, error) {
	s, err := scanSubject(r.pool.QueryRow(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Subject{}, model.ErrSubjectNotFound
	}
	if err != nil {
		return model.Subject{}, fmt.Errorf("find subject: %w", err)
	}
	return s, nil
}

func (r *SubjectRepository) List(ctx context.Context, isActive *bool, limit int, offset int) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+subjectColumns+` FROM subjects
		 WHERE ($1::boolean IS NULL OR is_active = $1)
		 ORDER BY ord ASC, name ASC
		 LIMIT $2 OFFSET $3`,
		isActive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]model.Subject, 0)
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepository) Update(ctx context.Context, s model.Subject) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subjects SET name = $2, description = $3, icon_url = $4, ord = $5, is_active = $6, updated_at = $7
		 WHERE id = $1`,
		s.ID, s.Name, s.Description, s.IconURL, s.Order, s.IsActive, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSubjectNotFound
	}
	return nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSubjectNotFound
	}
	return nil
}
