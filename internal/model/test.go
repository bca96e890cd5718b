package model

import "time"

type Test struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description,omitempty"`
	VideoID      *string        `json:"video_id,omitempty"`
	Category     *string        `json:"category,omitempty"`
	Subject      *string        `json:"subject,omitempty"`
	TimeLimit    int            `json:"time_limit"`
	PassingScore int            `json:"passing_score"`
	IsPublished  bool           `json:"is_published"`
	Questions    []TestQuestion `json:"questions,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type TestQuestion struct {
	ID            string   `json:"id"`
	TestID        string   `json:"test_id"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Explanation   *string  `json:"explanation,omitempty"`
	Order         int      `json:"order"`
}

type TestFilter struct {
	Category string
	Subject  string
	VideoID  string
}

type TestResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TestID         string    `json:"test_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	TimeSpent      *int      `json:"time_spent,omitempty"`
	Passed         bool      `json:"passed"`
	Answers        []int     `json:"answers,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
