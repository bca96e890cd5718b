package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-edu-platform/internal/model"
)

const testColumns = `id, title, description, video_id, category, subject, time_limit,
	passing_score, is_published, created_at, updated_at`

type TestRepository struct {
	pool *pgxpool.Pool
}

func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

func scanTest(row pgx.Row) (model.Test, error) {
	var t model.Test
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.VideoID, &t.Category, &t.Subject,
		&t.TimeLimit, &t.PassingScore, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts the test and its questions in one transaction.
func (r *TestRepository) Create(ctx context.Context, t model.Test) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create test: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO tests (id, title, description, video_id, category, subject, time_limit,
		                    passing_score, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, t.VideoID, t.Category, t.Subject, t.TimeLimit,
		t.PassingScore, t.IsPublished, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create test: %w", err)
	}

	for _, q := range t.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode question options: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO test_questions (id, test_id, question_text, options, correct_answer,
			                             image_url, explanation, ord)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, t.ID, q.QuestionText, options, q.CorrectAnswer, q.ImageURL, q.Explanation, q.Order)
		if err != nil {
			return fmt.Errorf("create test question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create test: %w", err)
	}
	return nil
}

func (r *TestRepository) FindByID(ctx context.Context, id string) (model.Test, error) {
	t, err := scanTest(r.pool.QueryRow(ctx,
		`SELECT `+testColumns+` FROM tests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Test{}, model.ErrTestNotFound
	}
	if err != nil {
		return model.Test{}, fmt.Errorf("find test: %w", err)
	}

	t.Questions, err = r.QuestionsByTest(ctx, id)
	if err != nil {
		return model.Test{}, err
	}
	return t, nil
}

func (r *TestRepository) QuestionsByTest(ctx context.Context, testID string) ([]model.TestQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, question_text, options, correct_answer, image_url, explanation, ord
		 FROM test_questions WHERE test_id = $1 ORDER BY ord`, testID)
	if err != nil {
		return nil, fmt.Errorf("list test questions: %w", err)
	}
	defer rows.Close()

	questions := make([]model.TestQuestion, 0)
	for rows.Next() {
		var (
			q       model.TestQuestion
			options []byte
		)
		if err := rows.Scan(&q.ID, &q.TestID, &q.QuestionText, &options, &q.CorrectAnswer,
			&q.ImageURL, &q.Explanation, &q.Order); err != nil {
			return nil, fmt.Errorf("scan test question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *TestRepository) List(ctx context.Context, f model.TestFilter) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+testColumns+` FROM tests
		 WHERE is_published
		   AND ($1 = '' OR category = $1)
		   AND ($2 = '' OR subject = $2)
		   AND ($3 = '' OR video_id = $3::uuid)
		 ORDER BY created_at DESC`,
		f.Category, f.Subject, f.VideoID)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	tests := make([]model.Test, 0)
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (r *TestRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTestNotFound
	}
	return nil
}

func (r *TestRepository) CreateResult(ctx context.Context, res model.TestResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO test_results (id, user_id, test_id, score, total_questions, percentage,
		                           time_spent, passed, answers, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID, res.UserID, res.TestID, res.Score, res.TotalQuestions, res.Percentage,
		res.TimeSpent, res.Passed, answers, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("create test result: %w", err)
	}
	return nil
}

func (r *TestRepository) ResultsByUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, score, total_questions, percentage, time_spent, passed,
		        answers, created_at
		 FROM test_results WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	defer rows.Close()

	results := make([]model.TestResult, 0)
	for rows.Next() {
		var (
			res     model.TestResult
			answers []byte
		)
		if err := rows.Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.TotalQuestions,
			&res.Percentage, &res.TimeSpent, &res.Passed, &answers, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &res.Answers); err != nil {
				return nil, fmt.Errorf("decode answers: %w", err)
			}
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
