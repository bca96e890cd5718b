package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
	"go-edu-platform/internal/service"
	"go-edu-platform/pkg/apierror"
)

type TeacherHandler struct {
	service *service.TeacherService
}

func NewTeacherHandler(service *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{service: service}
}

func (h *TeacherHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.TeacherCreateRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	teacher, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, teacher, nil)
}

func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)
	subjectID := r.URL.Query().Get("subject_id")

	teachers, err := h.service.List(r.Context(), subjectID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, teachers, &model.Meta{Limit: limit, Offset: offset, Total: len(teachers)})
}

func (h *TeacherHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	teachers, err := h.service.ListBySubject(r.Context(), chi.URLParam(r, "subjectID"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, teachers, &model.Meta{Limit: limit, Offset: offset, Total: len(teachers)})
}

func (h *TeacherHandler) Get(w http.ResponseWriter, r *http.Request) {
	teacher, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, teacher, nil)
}

func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.TeacherUpdateRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	teacher, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, teacher, nil)
}

func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": "teacher deleted"}, nil)
}

func (h *TeacherHandler) AssignSubject(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.TeacherSubjectRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	link, err := h.service.AssignSubject(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, link, nil)
}

func (h *TeacherHandler) UnassignSubject(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "id")
	subjectID := chi.URLParam(r, "subjectID")

	if err := h.service.UnassignSubject(r.Context(), teacherID, subjectID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": "subject unassigned"}, nil)
}
