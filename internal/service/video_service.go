package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-edu-platform/internal/model"
	"go-edu-platform/pkg/apierror"
)

type VideoStore interface {
	CreateCategory(ctx context.Context, c model.VideoCategory) error
	ListCategories(ctx context.Context) ([]model.VideoCategory, error)
	Create(ctx context.Context, v model.Video) error
	FindByID(ctx context.Context, id string) (model.Video, error)
	List(ctx context.Context, f model.VideoFilter) ([]model.Video, error)
	Update(ctx context.Context, v model.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type ProgressStore interface {
	Upsert(ctx context.Context, p model.VideoProgress) error
	ListByUser(ctx context.Context, userID string) ([]model.VideoProgress, error)
}

type VideoService struct {
	videos   VideoStore
	progress ProgressStore
}

func NewVideoService(videos VideoStore, progress ProgressStore) *VideoService {
	return &VideoService{videos: videos, progress: progress}
}

func (s *VideoService) CreateCategory(ctx context.Context, req model.VideoCategoryRequest) (model.VideoCategory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.VideoCategory{}, apierror.BadRequest("category name is required", "name")
	}

	category := model.VideoCategory{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		Icon:        req.Icon,
		Order:       req.Order,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.videos.CreateCategory(ctx, category); err != nil {
		return model.VideoCategory{}, err
	}
	return category, nil
}

func (s *VideoService) ListCategories(ctx context.Context) ([]model.VideoCategory, error) {
	return s.videos.ListCategories(ctx)
}

func (s *VideoService) Create(ctx context.Context, req model.VideoRequest) (model.Video, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Video{}, apierror.BadRequest("video title is required", "title")
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		return model.Video{}, apierror.BadRequest("video_url is required", "video_url")
	}

	now := time.Now().UTC()
	video := model.Video{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		CategoryID:   req.CategoryID,
		SubjectID:    req.SubjectID,
		TeacherID:    req.TeacherID,
		IsPublished:  true,
		Order:        req.Order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.IsPublished != nil {
		video.IsPublished = *req.IsPublished
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return model.Video{}, err
	}
	return video, nil
}

func (s *VideoService) List(ctx context.Context, f model.VideoFilter) ([]model.Video, error) {
	return s.videos.List(ctx, f)
}

// Get returns one video and counts the view.
func (s *VideoService) Get(ctx context.Context, id string) (model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, err
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		return model.Video{}, err
	}
	video.ViewsCount++

	return video, nil
}

func (s *VideoService) Update(ctx context.Context, id string, req model.VideoRequest) (model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, err
	}

	if strings.TrimSpace(req.Title) != "" {
		video.Title = strings.TrimSpace(req.Title)
	}
	if strings.TrimSpace(req.VideoURL) != "" {
		video.VideoURL = req.VideoURL
	}
	video.Description = req.Description
	video.ThumbnailURL = req.ThumbnailURL
	video.Duration = req.Duration
	video.CategoryID = req.CategoryID
	video.SubjectID = req.SubjectID
	video.TeacherID = req.TeacherID
	video.Order = req.Order
	if req.IsPublished != nil {
		video.IsPublished = *req.IsPublished
	}

	if err := s.videos.Update(ctx, video); err != nil {
		return model.Video{}, err
	}
	return video, nil
}

func (s *VideoService) Delete(ctx context.Context, id string) error {
	return s.videos.Delete(ctx, id)
}

// SaveProgress records where user stopped in a video, one row per
// (user, video) pair.
func (s *VideoService) SaveProgress(ctx context.Context, user model.User, videoID string, req model.VideoProgressRequest) (model.VideoProgress, error) {
	if req.ProgressSeconds < 0 {
		return model.VideoProgress{}, apierror.BadRequest("progress_seconds cannot be negative", "progress_seconds")
	}

	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return model.VideoProgress{}, err
	}

	now := time.Now().UTC()
	progress := model.VideoProgress{
		ID:                   uuid.NewString(),
		UserID:               user.ID,
		VideoID:              videoID,
		ProgressSeconds:      req.ProgressSeconds,
		Completed:            req.Completed,
		CompletionPercentage: req.CompletionPercentage,
		LastWatched:          now,
		CreatedAt:            now,
	}

	if err := s.progress.Upsert(ctx, progress); err != nil {
		return model.VideoProgress{}, err
	}
	return progress, nil
}

func (s *VideoService) ProgressForUser(ctx context.Context, userID string) ([]model.VideoProgress, error) {
	return s.progress.ListByUser(ctx, userID)
}
