package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-edu-platform/internal/model"
	"go-edu-platform/pkg/apierror"
)

// principalResolver turns a bearer token into a live principal: signature
// and expiry checked, account loaded from storage, deactivated accounts
// rejected.
type principalResolver interface {
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

type AuthMiddleware struct {
	resolver principalResolver
}

func NewAuthMiddleware(resolver principalResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth admits requests carrying a valid access token for an active
// account and stores the principal in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAuthError(w, apierror.Unauthorized("missing or invalid authorization header"))
			return
		}

		token := strings.TrimSpace(header[7:])
		principal, err := m.resolver.Authenticate(r.Context(), token)
		if err != nil {
			var apiErr *apierror.APIError
			if errors.As(err, &apiErr) {
				writeAuthError(w, apiErr)
			} else {
				writeAuthError(w, apierror.Unauthorized("invalid or expired token"))
			}
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits principals whose role ranks at least as high as
// required. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, apierror.Unauthorized("authentication required"))
				return
			}

			if !principal.Role.Satisfies(required) {
				writeAuthError(w, apierror.Forbidden("insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func PrincipalFromContext(ctx context.Context) (model.User, bool) {
	principal, ok := ctx.Value(principalContextKey).(model.User)
	return principal, ok
}

func writeAuthError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}
