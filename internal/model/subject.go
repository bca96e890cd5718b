package model

import "time"

type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IconURL     *string   `json:"icon_url,omitempty"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeacherSubject assigns a teacher profile to a subject. A teacher may teach
// several subjects and a subject may have several teachers.
type TeacherSubject struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	SubjectID string    `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}
