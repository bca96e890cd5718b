package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"go-edu-platform/internal/model"
)

type memoryTestStore struct {
	tests   map[string]model.Test
	results []model.TestResult
}

func newMemoryTestStore() *memoryTestStore {
	return &memoryTestStore{tests: map[string]model.Test{}}
}

func (s *memoryTestStore) Create(_ context.Context, t model.Test) error {
	s.tests[t.ID] = t
	return nil
}

func (s *memoryTestStore) FindByID(_ context.Context, id string) (model.Test, error) {
	if t, ok := s.tests[id]; ok {
		return t, nil
	}
	return model.Test{}, model.ErrTestNotFound
}

func (s *memoryTestStore) QuestionsByTest(_ context.Context, testID string) ([]model.TestQuestion, error) {
	if t, ok := s.tests[testID]; ok {
		return t.Questions, nil
	}
	return nil, model.ErrTestNotFound
}

func (s *memoryTestStore) List(_ context.Context, _ model.TestFilter) ([]model.Test, error) {
	out := make([]model.Test, 0, len(s.tests))
	for _, t := range s.tests {
		out = append(out, t)
	}
	return out, nil
}

func (s *memoryTestStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tests[id]; !ok {
		return model.ErrTestNotFound
	}
	delete(s.tests, id)
	return nil
}

func (s *memoryTestStore) CreateResult(_ context.Context, res model.TestResult) error {
	s.results = append(s.results, res)
	return nil
}

func (s *memoryTestStore) ResultsByUser(_ context.Context, userID string) ([]model.TestResult, error) {
	out := []model.TestResult{}
	for _, res := range s.results {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, nil
}

func quizRequest() model.TestCreateRequest {
	return model.TestCreateRequest{
		Title: "Fractions basics",
		Questions: []model.TestQuestionRequest{
			{QuestionText: "1/2 + 1/2 = ?", Options: []string{"1", "2", "1/4"}, CorrectAnswer: 0},
			{QuestionText: "1/4 of 8 = ?", Options: []string{"4", "2", "6"}, CorrectAnswer: 1},
			{QuestionText: "3/3 = ?", Options: []string{"0", "3", "1"}, CorrectAnswer: 2},
			{QuestionText: "1/2 of 10 = ?", Options: []string{"5", "2", "20"}, CorrectAnswer: 0},
		},
	}
}

func TestTestService_CreateDefaults(t *testing.T) {
	t.Parallel()

	svc := NewTestService(newMemoryTestStore())

	created, err := svc.Create(context.Background(), quizRequest())
	require.NoError(t, err)
	require.Equal(t, defaultTimeLimit, created.TimeLimit)
	require.Equal(t, defaultPassingScore, created.PassingScore)
	require.True(t, created.IsPublished)
	require.Len(t, created.Questions, 4)
	require.Equal(t, 3, created.Questions[3].Order)
}

func TestTestService_CreateValidation(t *testing.T) {
	t.Parallel()

	svc := NewTestService(newMemoryTestStore())
	ctx := context.Background()

	req := quizRequest()
	req.Title = "  "
	_, err := svc.Create(ctx, req)
	requireStatus(t, err, 400)

	req = quizRequest()
	req.Questions = nil
	_, err = svc.Create(ctx, req)
	requireStatus(t, err, 400)

	req = quizRequest()
	req.Questions[0].Options = []string{"only one"}
	_, err = svc.Create(ctx, req)
	requireStatus(t, err, 400)

	req = quizRequest()
	req.Questions[0].CorrectAnswer = 5
	_, err = svc.Create(ctx, req)
	requireStatus(t, err, 400)
}

func TestTestService_SubmitGrades(t *testing.T) {
	t.Parallel()

	store := newMemoryTestStore()
	svc := NewTestService(store)
	ctx := context.Background()
	student := model.User{ID: "student-1", Username: "student", Role: model.RoleClient, IsActive: true}

	req := quizRequest()
	req.PassingScore = 75
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)

	// Three of four correct: 75%, exactly the passing score.
	result, err := svc.Submit(ctx, student, model.TestSubmitRequest{
		TestID:  created.ID,
		Answers: []int{0, 1, 2, 1},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Score)
	require.Equal(t, 4, result.TotalQuestions)
	require.Equal(t, 75, result.Percentage)
	require.True(t, result.Passed)

	// One of four correct fails.
	result, err = svc.Submit(ctx, student, model.TestSubmitRequest{
		TestID:  created.ID,
		Answers: []int{0, 0, 0, 1},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Score)
	require.Equal(t, 25, result.Percentage)
	require.False(t, result.Passed)

	results, err := svc.ResultsForUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestTestService_SubmitValidation(t *testing.T) {
	t.Parallel()

	svc := NewTestService(newMemoryTestStore())
	ctx := context.Background()
	student := model.User{ID: "student-1", Role: model.RoleClient}

	_, err := svc.Submit(ctx, student, model.TestSubmitRequest{TestID: "missing", Answers: []int{0}})
	require.ErrorIs(t, err, model.ErrTestNotFound)

	created, err := svc.Create(ctx, quizRequest())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, student, model.TestSubmitRequest{TestID: created.ID, Answers: []int{0}})
	requireStatus(t, err, 400)
}

func TestGradeAnswers(t *testing.T) {
	t.Parallel()

	questions := []model.TestQuestion{
		{CorrectAnswer: 0},
		{CorrectAnswer: 2},
		{CorrectAnswer: 1},
	}

	require.Equal(t, 3, gradeAnswers(questions, []int{0, 2, 1}))
	require.Equal(t, 0, gradeAnswers(questions, []int{1, 0, 2}))
	require.Equal(t, 1, gradeAnswers(questions, []int{0, 0, 0}))
	require.Equal(t, 0, gradeAnswers(nil, nil))
}
