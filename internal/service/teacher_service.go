package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-edu-platform/internal/model"
	"go-edu-platform/pkg/apierror"
)

type TeacherStore interface {
	Create(ctx context.Context, t model.Teacher) error
	FindByID(ctx context.Context, id string) (model.Teacher, error)
	FindByUserID(ctx context.Context, userID string) (model.Teacher, error)
	List(ctx context.Context, subjectID string, limit int, offset int) ([]model.Teacher, error)
	Update(ctx context.Context, t model.Teacher) error
	Delete(ctx context.Context, id string) error
	AssignSubject(ctx context.Context, ts model.TeacherSubject) error
	UnassignSubject(ctx context.Context, teacherID string, subjectID string) error
}

type TeacherService struct {
	teachers TeacherStore
	users    UserStore
	subjects SubjectStore
}

func NewTeacherService(teachers TeacherStore, users UserStore, subjects SubjectStore) *TeacherService {
	return &TeacherService{teachers: teachers, users: users, subjects: subjects}
}

// Create attaches a teaching profile to an existing user. One profile per
// user; the storage constraint backs the pre-check.
func (s *TeacherService) Create(ctx context.Context, req model.TeacherCreateRequest) (model.Teacher, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return model.Teacher{}, apierror.BadRequest("full_name is required", "full_name")
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return model.Teacher{}, err
	}

	if _, err := s.teachers.FindByUserID(ctx, req.UserID); err == nil {
		return model.Teacher{}, apierror.Conflict("teacher profile already exists for this user", req.UserID)
	} else if !errors.Is(err, model.ErrTeacherNotFound) {
		return model.Teacher{}, err
	}

	now := time.Now().UTC()
	teacher := model.Teacher{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		FullName:        strings.TrimSpace(req.FullName),
		Bio:             req.Bio,
		AvatarURL:       req.AvatarURL,
		ExperienceYears: req.ExperienceYears,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.teachers.Create(ctx, teacher); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.Teacher{}, apierror.Conflict("teacher profile already exists for this user", req.UserID)
		}
		return model.Teacher{}, err
	}
	return teacher, nil
}

func (s *TeacherService) Get(ctx context.Context, id string) (model.Teacher, error) {
	return s.teachers.FindByID(ctx, id)
}

func (s *TeacherService) List(ctx context.Context, subjectID string, limit int, offset int) ([]model.Teacher, error) {
	return s.teachers.List(ctx, subjectID, clampLimit(limit), maxInt(offset, 0))
}

// ListBySubject is the subject-side view of the teacher list; it 404s when
// the subject itself is unknown.
func (s *TeacherService) ListBySubject(ctx context.Context, subjectID string, limit int, offset int) ([]model.Teacher, error) {
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.teachers.List(ctx, subjectID, clampLimit(limit), maxInt(offset, 0))
}

// Update edits a profile. A teacher may edit their own; anyone else needs
// admin rank.
func (s *TeacherService) Update(ctx context.Context, actor model.User, id string, req model.TeacherUpdateRequest) (model.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return model.Teacher{}, err
	}

	if teacher.UserID != actor.ID && !actor.Role.IsAdmin() {
		return model.Teacher{}, apierror.Forbidden("not the profile owner")
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return model.Teacher{}, apierror.BadRequest("full_name cannot be blank", "full_name")
		}
		teacher.FullName = name
	}
	if req.Bio != nil {
		teacher.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		teacher.AvatarURL = req.AvatarURL
	}
	if req.ExperienceYears != nil {
		teacher.ExperienceYears = *req.ExperienceYears
	}
	if req.Rating != nil {
		teacher.Rating = *req.Rating
	}

	if err := s.teachers.Update(ctx, teacher); err != nil {
		return model.Teacher{}, err
	}
	return teacher, nil
}

func (s *TeacherService) Delete(ctx context.Context, id string) error {
	return s.teachers.Delete(ctx, id)
}

func (s *TeacherService) AssignSubject(ctx context.Context, req model.TeacherSubjectRequest) (model.TeacherSubject, error) {
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		return model.TeacherSubject{}, err
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return model.TeacherSubject{}, err
	}

	assignment := model.TeacherSubject{
		ID:        uuid.NewString(),
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.teachers.AssignSubject(ctx, assignment); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.TeacherSubject{}, apierror.Conflict("teacher is already assigned to this subject", "")
		}
		return model.TeacherSubject{}, err
	}
	return assignment, nil
}

func (s *TeacherService) UnassignSubject(ctx context.Context, teacherID string, subjectID string) error {
	return s.teachers.UnassignSubject(ctx, teacherID, subjectID)
}
