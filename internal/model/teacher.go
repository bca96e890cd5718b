package model

import "time"

// Teacher is the public teaching profile attached to a user account.
type Teacher struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	FullName        string    `json:"full_name"`
	Bio             *string   `json:"bio,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	Rating          float64   `json:"rating"`
	TotalStudents   int       `json:"total_students"`
	TotalVideos     int       `json:"total_videos"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
