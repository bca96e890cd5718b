package model

import "time"

type VideoCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Video is a lesson. VideoURL points at external storage (S3, YouTube); the
// server never touches the bytes.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Duration     *int      `json:"duration,omitempty"`
	CategoryID   *string   `json:"category_id,omitempty"`
	SubjectID    *string   `json:"subject_id,omitempty"`
	TeacherID    *string   `json:"teacher_id,omitempty"`
	IsPublished  bool      `json:"is_published"`
	Order        int       `json:"order"`
	ViewsCount   int       `json:"views_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type VideoFilter struct {
	CategoryID string
	SubjectID  string
	Search     string
}

// VideoProgress tracks where a user stopped in a video.
type VideoProgress struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	VideoID              string    `json:"video_id"`
	ProgressSeconds      int       `json:"progress_seconds"`
	Completed            bool      `json:"completed"`
	CompletionPercentage float64   `json:"completion_percentage"`
	LastWatched          time.Time `json:"last_watched"`
	CreatedAt            time.Time `json:"created_at"`
}
