package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-edu-platform/internal/model"
	"go-edu-platform/pkg/apierror"
)

type fakeResolver struct {
	users map[string]model.User
	errs  map[string]error
}

func (f *fakeResolver) Authenticate(_ context.Context, token string) (model.User, error) {
	if err, ok := f.errs[token]; ok {
		return model.User{}, err
	}
	if user, ok := f.users[token]; ok {
		return user, nil
	}
	return model.User{}, apierror.Unauthorized("invalid or expired token")
}

func newTestUser(role model.Role) model.User {
	return model.User{ID: uuid.NewString(), Username: "tester", Role: role, IsActive: true}
}

func okHandler(t *testing.T, captured *model.User) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			principal, ok := PrincipalFromContext(r.Context())
			require.True(t, ok)
			*captured = principal
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	mw := NewAuthMiddleware(&fakeResolver{})

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(t, nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	mw := NewAuthMiddleware(&fakeResolver{})

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(t, nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	mw := NewAuthMiddleware(&fakeResolver{})

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(t, nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_DeactivatedAccount(t *testing.T) {
	resolver := &fakeResolver{errs: map[string]error{
		"stale": apierror.Forbidden("account is deactivated"),
	}}
	mw := NewAuthMiddleware(resolver)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(t, nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "deactivated")
}

func TestRequireAuth_StoresPrincipal(t *testing.T) {
	user := newTestUser(model.RoleClient)
	resolver := &fakeResolver{users: map[string]model.User{"good": user}}
	mw := NewAuthMiddleware(resolver)

	var captured model.User
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(t, &captured)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, user.ID, captured.ID)
	require.Equal(t, user.Role, captured.Role)
}

func TestRequireRole_Hierarchy(t *testing.T) {
	cases := []struct {
		name     string
		actual   model.Role
		required model.Role
		want     int
	}{
		{"client denied teacher route", model.RoleClient, model.RoleTeacher, http.StatusForbidden},
		{"teacher allowed teacher route", model.RoleTeacher, model.RoleTeacher, http.StatusOK},
		{"admin allowed teacher route", model.RoleAdmin, model.RoleTeacher, http.StatusOK},
		{"admin denied superadmin route", model.RoleAdmin, model.RoleSuperadmin, http.StatusForbidden},
		{"superadmin allowed everywhere", model.RoleSuperadmin, model.RoleClient, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := newTestUser(tc.actual)
			resolver := &fakeResolver{users: map[string]model.User{"token": user}}
			mw := NewAuthMiddleware(resolver)

			handler := mw.RequireAuth(mw.RequireRole(tc.required)(okHandler(t, nil)))

			req := httptest.NewRequest("GET", "/api/v1/admin/users", nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	mw := NewAuthMiddleware(&fakeResolver{})

	// RequireRole without RequireAuth in front finds no principal.
	handler := mw.RequireRole(model.RoleClient)(okHandler(t, nil))

	req := httptest.NewRequest("GET", "/api/v1/subjects", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
