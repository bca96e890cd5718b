package model

type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type OAuthLoginRequest struct {
	Provider    string `json:"provider"`
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token,omitempty"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type SubjectCreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IconURL     *string `json:"icon_url,omitempty"`
	Order       int     `json:"order"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IconURL     *string `json:"icon_url,omitempty"`
	Order       *int    `json:"order,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type TeacherCreateRequest struct {
	UserID          string  `json:"user_id"`
	FullName        string  `json:"full_name"`
	Bio             *string `json:"bio,omitempty"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	ExperienceYears int     `json:"experience_years"`
}

type TeacherUpdateRequest struct {
	FullName        *string  `json:"full_name,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	AvatarURL       *string  `json:"avatar_url,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
}

type TeacherSubjectRequest struct {
	TeacherID string `json:"teacher_id"`
	SubjectID string `json:"subject_id"`
}

type VideoCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Order       int     `json:"order"`
}

type VideoRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	VideoURL     string  `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	Duration     *int    `json:"duration,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	SubjectID    *string `json:"subject_id,omitempty"`
	TeacherID    *string `json:"teacher_id,omitempty"`
	IsPublished  *bool   `json:"is_published,omitempty"`
	Order        int     `json:"order"`
}

type TestQuestionRequest struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Explanation   *string  `json:"explanation,omitempty"`
	Order         int      `json:"order"`
}

type TestCreateRequest struct {
	Title        string                `json:"title"`
	Description  *string               `json:"description,omitempty"`
	VideoID      *string               `json:"video_id,omitempty"`
	Category     *string               `json:"category,omitempty"`
	Subject      *string               `json:"subject,omitempty"`
	TimeLimit    int                   `json:"time_limit"`
	PassingScore int                   `json:"passing_score"`
	IsPublished  *bool                 `json:"is_published,omitempty"`
	Questions    []TestQuestionRequest `json:"questions"`
}

type TestSubmitRequest struct {
	TestID    string `json:"test_id"`
	Answers   []int  `json:"answers"`
	TimeSpent *int   `json:"time_spent,omitempty"`
}

type VideoProgressRequest struct {
	ProgressSeconds      int     `json:"progress_seconds"`
	CompletionPercentage float64 `json:"completion_percentage"`
	Completed            bool    `json:"completed"`
}

type UserList struct {
	Users []UserInfo `json:"users"`
}
