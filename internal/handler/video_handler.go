package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
	"go-edu-platform/internal/service"
	"go-edu-platform/pkg/apierror"
)

type VideoHandler struct {
	service *service.VideoService
}

func NewVideoHandler(service *service.VideoService) *VideoHandler {
	return &VideoHandler{service: service}
}

func (h *VideoHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VideoCategoryRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, category, nil)
}

func (h *VideoHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, categories, nil)
}

func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VideoRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	video, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, video, nil)
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.VideoFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		SubjectID:  r.URL.Query().Get("subject_id"),
		Search:     r.URL.Query().Get("search"),
	}

	videos, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, videos, &model.Meta{Total: len(videos)})
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, nil)
}

func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VideoRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	video, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, video, nil)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": "video deleted"}, nil)
}

func (h *VideoHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.VideoProgressRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	progress, err := h.service.SaveProgress(r.Context(), principal, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, progress, nil)
}

func (h *VideoHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	progress, err := h.service.ProgressForUser(r.Context(), principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, progress, nil)
}
