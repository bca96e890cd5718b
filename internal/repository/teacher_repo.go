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

const teacherColumns = `id, user_id, full_name, bio, avatar_url, experience_years, rating,
	total_students, total_videos, created_at, updated_at`

type TeacherRepository struct {
	pool *pgxpool.Pool
}

func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

func scanTeacher(row pgx.Row) (model.Teacher, error) {
	var t model.Teacher
	err := row.Scan(&t.ID, &t.UserID, &t.FullName, &t.Bio, &t.AvatarURL, &t.ExperienceYears,
		&t.Rating, &t.TotalStudents, &t.TotalVideos, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TeacherRepository) Create(ctx context.Context, t model.Teacher) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teachers (id, user_id, full_name, bio, avatar_url, experience_years, rating,
		                       total_students, total_videos, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.UserID, t.FullName, t.Bio, t.AvatarURL, t.ExperienceYears, t.Rating,
		t.TotalStudents, t.TotalVideos, t.CreatedAt, t.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

func (r *TeacherRepository) FindByID(ctx context.Context, id string) (model.Teacher, error) {
	t, err := scanTeacher(r.pool.QueryRow(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Teacher{}, model.ErrTeacherNotFound
	}
	if err != nil {
		return model.Teacher{}, fmt.Errorf("find teacher: %w", err)
	}
	return t, nil
}

func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (model.Teacher, error) {
	t, err := scanTeacher(r.pool.QueryRow(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Teacher{}, model.ErrTeacherNotFound
	}
	if err != nil {
		return model.Teacher{}, fmt.Errorf("find teacher by user: %w", err)
	}
	return t, nil
}

// List returns teacher profiles, optionally narrowed to one subject.
func (r *TeacherRepository) List(ctx context.Context, subjectID string, limit int, offset int) ([]model.Teacher, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if subjectID != "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+teacherColumns+` FROM teachers
			 JOIN teacher_subjects ts ON ts.teacher_id = teachers.id
			 WHERE ts.subject_id = $1
			 ORDER BY full_name LIMIT $2 OFFSET $3`,
			subjectID, limit, offset)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+teacherColumns+` FROM teachers ORDER BY full_name LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]model.Teacher, 0)
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

func (r *TeacherRepository) Update(ctx context.Context, t model.Teacher) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE teachers SET full_name = $2, bio = $3, avatar_url = $4, experience_years = $5,
		        rating = $6, updated_at = $7
		 WHERE id = $1`,
		t.ID, t.FullName, t.Bio, t.AvatarURL, t.ExperienceYears, t.Rating, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTeacherNotFound
	}
	return nil
}

func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTeacherNotFound
	}
	return nil
}

func (r *TeacherRepository) AssignSubject(ctx context.Context, ts model.TeacherSubject) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teacher_subjects (id, teacher_id, subject_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		ts.ID, ts.TeacherID, ts.SubjectID, ts.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("assign subject: %w", err)
	}
	return nil
}

func (r *TeacherRepository) UnassignSubject(ctx context.Context, teacherID string, subjectID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2`,
		teacherID, subjectID)
	if err != nil {
		return fmt.Errorf("unassign subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTeacherNotFound
	}
	return nil
}
