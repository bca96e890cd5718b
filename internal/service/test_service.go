package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-edu-platform/internal/model"
	"go-edu-platform/pkg/apierror"
)

const (
	defaultTimeLimit    = 600
	defaultPassingScore = 70
)

type TestStore interface {
	Create(ctx context.Context, t model.Test) error
	FindByID(ctx context.Context, id string) (model.Test, error)
	QuestionsByTest(ctx context.Context, testID string) ([]model.TestQuestion, error)
	List(ctx context.Context, f model.TestFilter) ([]model.Test, error)
	Delete(ctx context.Context, id string) error
	CreateResult(ctx context.Context, res model.TestResult) error
	ResultsByUser(ctx context.Context, userID string) ([]model.TestResult, error)
}

type TestService struct {
	tests TestStore
}

func NewTestService(tests TestStore) *TestService {
	return &TestService{tests: tests}
}

func (s *TestService) Create(ctx context.Context, req model.TestCreateRequest) (model.Test, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Test{}, apierror.BadRequest("test title is required", "title")
	}
	if len(req.Questions) == 0 {
		return model.Test{}, apierror.BadRequest("a test needs at least one question", "questions")
	}

	now := time.Now().UTC()
	test := model.Test{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		VideoID:      req.VideoID,
		Category:     req.Category,
		Subject:      req.Subject,
		TimeLimit:    req.TimeLimit,
		PassingScore: req.PassingScore,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if test.TimeLimit <= 0 {
		test.TimeLimit = defaultTimeLimit
	}
	if test.PassingScore <= 0 {
		test.PassingScore = defaultPassingScore
	}
	if req.IsPublished != nil {
		test.IsPublished = *req.IsPublished
	}

	for i, q := range req.Questions {
		if strings.TrimSpace(q.QuestionText) == "" {
			return model.Test{}, apierror.BadRequest("question text is required", "questions")
		}
		if len(q.Options) < 2 {
			return model.Test{}, apierror.BadRequest("a question needs at least two options", "questions")
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return model.Test{}, apierror.BadRequest("correct_answer is out of range", "questions")
		}

		order := q.Order
		if order == 0 {
			order = i
		}
		test.Questions = append(test.Questions, model.TestQuestion{
			ID:            uuid.NewString(),
			TestID:        test.ID,
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			ImageURL:      q.ImageURL,
			Explanation:   q.Explanation,
			Order:         order,
		})
	}

	if err := s.tests.Create(ctx, test); err != nil {
		return model.Test{}, err
	}
	return test, nil
}

func (s *TestService) Get(ctx context.Context, id string) (model.Test, error) {
	return s.tests.FindByID(ctx, id)
}

func (s *TestService) List(ctx context.Context, f model.TestFilter) ([]model.Test, error) {
	return s.tests.List(ctx, f)
}

func (s *TestService) Delete(ctx context.Context, id string) error {
	return s.tests.Delete(ctx, id)
}

// Submit grades the answers server-side and persists the result.
func (s *TestService) Submit(ctx context.Context, user model.User, req model.TestSubmitRequest) (model.TestResult, error) {
	test, err := s.tests.FindByID(ctx, req.TestID)
	if err != nil {
		return model.TestResult{}, err
	}

	questions := test.Questions
	if len(req.Answers) != len(questions) {
		return model.TestResult{}, apierror.BadRequest("answer count does not match question count", "answers")
	}

	score := gradeAnswers(questions, req.Answers)
	total := len(questions)
	percentage := 0
	if total > 0 {
		percentage = score * 100 / total
	}

	result := model.TestResult{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		TestID:         test.ID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
		TimeSpent:      req.TimeSpent,
		Passed:         percentage >= test.PassingScore,
		Answers:        req.Answers,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.tests.CreateResult(ctx, result); err != nil {
		return model.TestResult{}, err
	}
	return result, nil
}

func (s *TestService) ResultsForUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	return s.tests.ResultsByUser(ctx, userID)
}

// gradeAnswers counts answers matching the correct option index, position
// by position.
func gradeAnswers(questions []model.TestQuestion, answers []int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}
