//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-edu-platform/internal/model"
)

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	// Self-service client signup.
	resp := env.doJSON(t, http.MethodPost, "/api/v1/auth/register/client", "", map[string]string{
		"username": "student1",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.UserInfo
	decodeData(t, resp, &created)
	require.Equal(t, model.RoleClient, created.Role)

	token := env.login(t, "student1", "secret123")

	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	var me model.UserInfo
	decodeData(t, resp, &me)
	require.Equal(t, "student1", me.Username)

	// Without a token, /me is rejected.
	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodPost, "/api/v1/auth/register/client", "", map[string]string{
		"username": "student2",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "student2",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pair model.TokenPair
	decodeData(t, resp, &pair)

	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var next model.TokenPair
	decodeData(t, resp, &next)
	require.NotEmpty(t, next.AccessToken)

	// An access token does not pass as a refresh token.
	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": pair.AccessToken,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterRoleGates(t *testing.T) {
	env := newTestEnv(t)
	rootToken := env.login(t, "root", "bootstrap-secret")

	// Anonymous callers cannot create teachers.
	resp := env.doJSON(t, http.MethodPost, "/api/v1/auth/register/teacher", "", map[string]string{
		"username": "t1", "password": "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The superadmin can create an admin.
	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/register/admin", rootToken, map[string]string{
		"username": "admin1", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	adminToken := env.login(t, "admin1", "secret123")

	// An admin can create teachers and other admins, but not superadmins.
	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/register/teacher", adminToken, map[string]string{
		"username": "teacher1", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/register/admin", adminToken, map[string]string{
		"username": "admin2", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/register/superadmin", adminToken, map[string]string{
		"username": "root2", "password": "secret123",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestChangeRoleFlow(t *testing.T) {
	env := newTestEnv(t)
	rootToken := env.login(t, "root", "bootstrap-secret")

	resp := env.doJSON(t, http.MethodPost, "/api/v1/auth/register/client", "", map[string]string{
		"username": "promotee", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var target model.UserInfo
	decodeData(t, resp, &target)

	// A client cannot list users or change roles.
	clientToken := env.login(t, "promotee", "secret123")
	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/users", clientToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPatch, "/api/v1/auth/users/"+target.ID+"/role", rootToken, map[string]string{
		"role": "teacher",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.UserInfo
	decodeData(t, resp, &updated)
	require.Equal(t, model.RoleTeacher, updated.Role)

	// check-role reflects the live account, not the role baked into the
	// old token.
	teacherToken := env.login(t, "promotee", "secret123")
	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/check-role/teacher", teacherToken, nil)
	var check struct {
		Authorized bool `json:"authorized"`
	}
	decodeData(t, resp, &check)
	require.True(t, check.Authorized)

	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/check-role/admin", teacherToken, nil)
	decodeData(t, resp, &check)
	require.False(t, check.Authorized)
}

func TestDeactivationFlow(t *testing.T) {
	env := newTestEnv(t)
	rootToken := env.login(t, "root", "bootstrap-secret")

	resp := env.doJSON(t, http.MethodPost, "/api/v1/auth/register/client", "", map[string]string{
		"username": "dave", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var target model.UserInfo
	decodeData(t, resp, &target)

	clientToken := env.login(t, "dave", "secret123")

	// A client cannot deactivate anyone.
	resp = env.doJSON(t, http.MethodPatch, "/api/v1/auth/users/"+target.ID+"/active", clientToken, map[string]bool{
		"is_active": false,
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPatch, "/api/v1/auth/users/"+target.ID+"/active", rootToken, map[string]bool{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.UserInfo
	decodeData(t, resp, &updated)
	require.False(t, updated.IsActive)

	// Existing tokens stop working and logging in fails.
	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/me", clientToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "dave", "password": "secret123",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Reactivation restores access.
	resp = env.doJSON(t, http.MethodPatch, "/api/v1/auth/users/"+target.ID+"/active", rootToken, map[string]bool{
		"is_active": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.doJSON(t, http.MethodGet, "/api/v1/auth/me", clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
