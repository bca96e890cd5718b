package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-edu-platform/internal/middleware"
	"go-edu-platform/internal/model"
	"go-edu-platform/internal/oauth"
	"go-edu-platform/internal/service"
	"go-edu-platform/pkg/apierror"
)

type AuthHandler struct {
	service   *service.AuthService
	providers oauth.Registry
}

func NewAuthHandler(service *service.AuthService, providers oauth.Registry) *AuthHandler {
	return &AuthHandler{service: service, providers: providers}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

// Register returns a handler that creates an account with a fixed role.
// The route decides the role, not the request body.
func (h *AuthHandler) Register(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var payload model.RegisterRequest
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, err)
			return
		}

		user, err := h.service.Register(r.Context(), payload, role)
		if err != nil {
			writeError(w, err)
			return
		}

		writeSuccess(w, http.StatusCreated, user, nil)
	}
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.New("BAD_REQUEST", "refresh_token is required", "refresh_token", http.StatusBadRequest))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	writeSuccess(w, http.StatusOK, principal.Info(), nil)
}

// CheckRole reports whether the caller's role satisfies the requested one.
func (h *AuthHandler) CheckRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	required, err := model.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, apierror.BadRequest("unknown role", chi.URLParam(r, "role")))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"role":       principal.Role,
		"required":   required,
		"authorized": principal.Role.Satisfies(required),
	}, nil)
}

func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.OAuthLoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(payload.IDToken) == "" {
		writeError(w, apierror.New("BAD_REQUEST", "id_token is required", "id_token", http.StatusBadRequest))
		return
	}
	if !model.ValidProvider(payload.Provider) {
		writeError(w, apierror.BadRequest("unsupported provider", payload.Provider))
		return
	}

	identity, err := h.providers.Verify(r.Context(), payload.Provider, payload.IDToken, payload.AccessToken)
	if err != nil {
		writeError(w, apierror.Unauthorized("provider token verification failed"))
		return
	}

	tokens, err := h.service.OAuthLogin(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}
