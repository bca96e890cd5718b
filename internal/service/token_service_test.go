package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-edu-platform/internal/model"
)

func testTokenService() *TokenService {
	return NewTokenService("test-secret", time.Hour, 24*time.Hour)
}

func tokenTestUser() model.User {
	return model.User{
		ID:       uuid.NewString(),
		Username: "alice",
		Role:     model.RoleTeacher,
		IsActive: true,
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	t.Parallel()

	svc := testTokenService()
	user := tokenTestUser()

	token, err := svc.IssueAccess(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Decode(token, TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, user.Username, claims.Username)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Role, claims.Role)
	require.Equal(t, TokenTypeAccess, claims.Type)
	require.NotEmpty(t, claims.TokenID)
}

func TestTokenService_RefreshCarriesNoRole(t *testing.T) {
	t.Parallel()

	svc := testTokenService()

	token, err := svc.IssueRefresh(tokenTestUser())
	require.NoError(t, err)

	claims, err := svc.Decode(token, TokenTypeRefresh)
	require.NoError(t, err)
	require.Empty(t, string(claims.Role))
	require.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestTokenService_TypeMismatch(t *testing.T) {
	t.Parallel()

	svc := testTokenService()
	user := tokenTestUser()

	refresh, err := svc.IssueRefresh(user)
	require.NoError(t, err)
	_, err = svc.Decode(refresh, TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	access, err := svc.IssueAccess(user)
	require.NoError(t, err)
	_, err = svc.Decode(access, TokenTypeRefresh)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService("secret-one", time.Hour, time.Hour)
	verifier := NewTokenService("secret-two", time.Hour, time.Hour)

	token, err := issuer.IssueAccess(tokenTestUser())
	require.NoError(t, err)

	_, err = verifier.Decode(token, TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("test-secret", -time.Minute, -time.Minute)

	token, err := svc.IssueAccess(tokenTestUser())
	require.NoError(t, err)

	_, err = svc.Decode(token, TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestTokenService_Garbage(t *testing.T) {
	t.Parallel()

	svc := testTokenService()

	_, err := svc.Decode("not.a.token", TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	_, err = svc.Decode("", TokenTypeAccess)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}
