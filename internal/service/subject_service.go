package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-edu-platform/internal/model"
	"go-edu-platform/pkg/apierror"
)

type SubjectStore interface {
	Create(ctx context.Context, s model.Subject) error
	FindByID(ctx context.Context, id string) (model.Subject, error)
	List(ctx context.Context, isActive *bool, limit int, offset int) ([]model.Subject, error)
	Update(ctx context.Context, s model.Subject) error
	Delete(ctx context.Context, id string) error
}

type SubjectService struct {
	subjects SubjectStore
}

func NewSubjectService(subjects SubjectStore) *SubjectService {
	return &SubjectService{subjects: subjects}
}

func (s *SubjectService) Create(ctx context.Context, req model.SubjectCreateRequest) (model.Subject, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Subject{}, apierror.BadRequest("subject name is required", "name")
	}

	now := time.Now().UTC()
	subject := model.Subject{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		IconURL:     req.IconURL,
		Order:       req.Order,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		return model.Subject{}, err
	}
	return subject, nil
}

func (s *SubjectService) Get(ctx context.Context, id string) (model.Subject, error) {
	return s.subjects.FindByID(ctx, id)
}

func (s *SubjectService) List(ctx context.Context, isActive *bool, limit int, offset int) ([]model.Subject, error) {
	return s.subjects.List(ctx, isActive, clampLimit(limit), maxInt(offset, 0))
}

func (s *SubjectService) Update(ctx context.Context, id string, req model.SubjectUpdateRequest) (model.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		return model.Subject{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.Subject{}, apierror.BadRequest("subject name cannot be blank", "name")
		}
		subject.Name = name
	}
	if req.Description != nil {
		subject.Description = req.Description
	}
	if req.IconURL != nil {
		subject.IconURL = req.IconURL
	}
	if req.Order != nil {
		subject.Order = *req.Order
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.subjects.Update(ctx, subject); err != nil {
		return model.Subject{}, err
	}
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, id string) error {
	return s.subjects.Delete(ctx, id)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func maxInt(a int, b int) int {
	if a > b {
		return a
	}
	return b
}
