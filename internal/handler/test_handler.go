package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
	"go-edu-platform/internal/service"
	"go-edu-platform/pkg/apierror"
)

type TestHandler struct {
	service *service.TestService
}

func NewTestHandler(service *service.TestService) *TestHandler {
	return &TestHandler{service: service}
}

func (h *TestHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.TestCreateRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	test, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, test, nil)
}

func (h *TestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.TestFilter{
		Category: r.URL.Query().Get("category"),
		Subject:  r.URL.Query().Get("subject"),
		VideoID:  r.URL.Query().Get("video_id"),
	}

	tests, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tests, &model.Meta{Total: len(tests)})
}

func (h *TestHandler) Get(w http.ResponseWriter, r *http.Request) {
	test, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, test, nil)
}

func (h *TestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"message": "test deleted"}, nil)
}

func (h *TestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.TestSubmitRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	payload.TestID = chi.URLParam(r, "id")

	result, err := h.service.Submit(r.Context(), principal, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *TestHandler) MyResults(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	results, err := h.service.ResultsForUser(r.Context(), principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, results, nil)
}
