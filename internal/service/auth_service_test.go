package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-edu-platform/internal/model"
	"go-edu-platform/internal/oauth"
	"go-edu-platform/pkg/apierror"
)

type memoryUserStore struct {
	users map[string]model.User // keyed by lowercase username
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]model.User{}}
}

func (s *memoryUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memoryUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	if u, ok := s.users[strings.ToLower(username)]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memoryUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := s.users[strings.ToLower(username)]
	return ok, nil
}

func (s *memoryUserStore) Create(_ context.Context, u model.User) error {
	key := strings.ToLower(u.Username)
	if _, ok := s.users[key]; ok {
		return model.ErrUserAlreadyExists
	}
	s.users[key] = u
	return nil
}

func (s *memoryUserStore) UpdateRole(_ context.Context, id string, role model.Role) error {
	for key, u := range s.users {
		if u.ID == id {
			u.Role = role
			s.users[key] = u
			return nil
		}
	}
	return model.ErrUserNotFound
}

func (s *memoryUserStore) SetActive(_ context.Context, id string, active bool) error {
	for key, u := range s.users {
		if u.ID == id {
			u.IsActive = active
			s.users[key] = u
			return nil
		}
	}
	return model.ErrUserNotFound
}

func (s *memoryUserStore) List(_ context.Context) ([]model.UserInfo, error) {
	infos := make([]model.UserInfo, 0, len(s.users))
	for _, u := range s.users {
		infos = append(infos, u.Info())
	}
	return infos, nil
}

func (s *memoryUserStore) ExistsByRole(_ context.Context, role model.Role) (bool, error) {
	for _, u := range s.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryUserStore) setActive(username string, active bool) {
	key := strings.ToLower(username)
	u := s.users[key]
	u.IsActive = active
	s.users[key] = u
}

type memoryOAuthStore struct {
	accounts map[string]model.OAuthAccount // keyed by provider + "/" + provider user id
}

func newMemoryOAuthStore() *memoryOAuthStore {
	return &memoryOAuthStore{accounts: map[string]model.OAuthAccount{}}
}

func (s *memoryOAuthStore) FindByProviderUserID(_ context.Context, provider string, providerUserID string) (model.OAuthAccount, error) {
	if a, ok := s.accounts[provider+"/"+providerUserID]; ok {
		return a, nil
	}
	return model.OAuthAccount{}, model.ErrUserNotFound
}

func (s *memoryOAuthStore) Create(_ context.Context, a model.OAuthAccount) error {
	key := a.Provider + "/" + a.ProviderUserID
	if _, ok := s.accounts[key]; ok {
		return model.ErrAlreadyExists
	}
	s.accounts[key] = a
	return nil
}

func (s *memoryOAuthStore) UpdateProfile(_ context.Context, id string, email *string, fullName *string, picture *string) error {
	for key, a := range s.accounts {
		if a.ID == id {
			if email != nil {
				a.Email = email
			}
			if fullName != nil {
				a.FullName = fullName
			}
			if picture != nil {
				a.Picture = picture
			}
			s.accounts[key] = a
			return nil
		}
	}
	return model.ErrUserNotFound
}

func newTestAuthService() (*AuthService, *memoryUserStore, *memoryOAuthStore) {
	users := newMemoryUserStore()
	oauthStore := newMemoryOAuthStore()
	tokens := NewTokenService("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(tokens, users, oauthStore), users, oauthStore
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	info, err := svc.Register(ctx, model.RegisterRequest{Username: "alice", Password: "secret123"}, model.RoleClient)
	require.NoError(t, err)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, model.RoleClient, info.Role)
	require.True(t, info.IsActive)

	pair, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64(time.Hour.Seconds()), pair.ExpiresIn)
	require.Equal(t, info.ID, pair.User.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Username: "", Password: "secret123"}, model.RoleClient)
	requireStatus(t, err, 400)

	_, err = svc.Register(ctx, model.RegisterRequest{Username: "bob", Password: "short"}, model.RoleClient)
	requireStatus(t, err, 400)

	_, err = svc.Register(ctx, model.RegisterRequest{Username: "bob", Password: "secret123"}, model.Role("owner"))
	requireStatus(t, err, 400)
}

func TestAuthService_RegisterDuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Username: "alice", Password: "secret123"}, model.RoleClient)
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.RegisterRequest{Username: "alice", Password: "another123"}, model.RoleClient)
	requireStatus(t, err, 409)
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()

	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Username: "alice", Password: "secret123"}, model.RoleClient)
	require.NoError(t, err)

	// Unknown username and wrong password produce the same error.
	_, unknownErr := svc.Login(ctx, "nobody", "secret123")
	requireStatus(t, unknownErr, 401)

	_, wrongErr := svc.Login(ctx, "alice", "wrong-password")
	requireStatus(t, wrongErr, 401)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())

	users.setActive("alice", false)
	_, err = svc.Login(ctx, "alice", "secret123")
	requireStatus(t, err, 403)
}

func TestAuthService_RefreshRotatesPair(t *testing.T) {
	t.Parallel()

	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Username: "alice", Password: "secret123"}, model.RoleClient)
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	require.Equal(t, pair.User.ID, next.User.ID)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	requireStatus(t, err, 401)

	// Deactivation applied after issue takes effect at refresh time.
	users.setActive("alice", false)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	requireStatus(t, err, 403)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Username: "alice", Password: "secret123"}, model.RoleTeacher)
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	principal, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", principal.Username)
	require.Equal(t, model.RoleTeacher, principal.Role)

	_, err = svc.Authenticate(ctx, pair.RefreshToken)
	requireStatus(t, err, 401)

	users.setActive("alice", false)
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	requireStatus(t, err, 403)
}

func TestAuthService_ChangeRole(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	target, err := svc.Register(ctx, model.RegisterRequest{Username: "bob", Password: "secret123"}, model.RoleClient)
	require.NoError(t, err)

	admin := model.User{ID: "admin-id", Username: "admin", Role: model.RoleAdmin, IsActive: true}
	superadmin := model.User{ID: "root-id", Username: "root", Role: model.RoleSuperadmin, IsActive: true}
	client := model.User{ID: "client-id", Username: "client", Role: model.RoleClient, IsActive: true}

	_, err = svc.ChangeRole(ctx, client, target.ID, model.RoleTeacher)
	requireStatus(t, err, 403)

	updated, err := svc.ChangeRole(ctx, admin, target.ID, model.RoleTeacher)
	require.NoError(t, err)
	require.Equal(t, model.RoleTeacher, updated.Role)

	// Only a superadmin may grant superadmin.
	_, err = svc.ChangeRole(ctx, admin, target.ID, model.RoleSuperadmin)
	requireStatus(t, err, 403)

	updated, err = svc.ChangeRole(ctx, superadmin, target.ID, model.RoleSuperadmin)
	require.NoError(t, err)
	require.Equal(t, model.RoleSuperadmin, updated.Role)

	_, err = svc.ChangeRole(ctx, admin, target.ID, model.Role("owner"))
	requireStatus(t, err, 400)
}

func TestAuthService_SetUserActive(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	target, err := svc.Register(ctx, model.RegisterRequest{Username: "bob", Password: "secret123"}, model.RoleClient)
	require.NoError(t, err)
	root, err := svc.Register(ctx, model.RegisterRequest{Username: "root", Password: "secret123"}, model.RoleSuperadmin)
	require.NoError(t, err)

	admin := model.User{ID: "admin-id", Username: "admin", Role: model.RoleAdmin, IsActive: true}
	client := model.User{ID: "client-id", Username: "client", Role: model.RoleClient, IsActive: true}

	_, err = svc.SetUserActive(ctx, client, target.ID, false)
	requireStatus(t, err, 403)

	updated, err := svc.SetUserActive(ctx, admin, target.ID, false)
	require.NoError(t, err)
	require.False(t, updated.IsActive)

	// A deactivated account can no longer log in.
	_, err = svc.Login(ctx, "bob", "secret123")
	requireStatus(t, err, 403)

	updated, err = svc.SetUserActive(ctx, admin, target.ID, true)
	require.NoError(t, err)
	require.True(t, updated.IsActive)

	_, err = svc.Login(ctx, "bob", "secret123")
	require.NoError(t, err)

	// Admins cannot deactivate themselves or a superadmin.
	_, err = svc.SetUserActive(ctx, admin, admin.ID, false)
	requireStatus(t, err, 400)
	_, err = svc.SetUserActive(ctx, admin, root.ID, false)
	requireStatus(t, err, 403)

	_, err = svc.SetUserActive(ctx, admin, "no-such-id", false)
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestAuthService_OAuthLogin(t *testing.T) {
	t.Parallel()

	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	identity := oauth.Identity{
		Provider:       model.ProviderGoogle,
		ProviderUserID: "google-123",
		Email:          "carol@example.com",
		FullName:       "Carol Jones",
	}

	// First login provisions a client account.
	pair, err := svc.OAuthLogin(ctx, identity)
	require.NoError(t, err)
	require.Equal(t, model.RoleClient, pair.User.Role)
	require.Equal(t, "carol_google", pair.User.Username)

	// Second login reuses the link, not a new account.
	again, err := svc.OAuthLogin(ctx, identity)
	require.NoError(t, err)
	require.Equal(t, pair.User.ID, again.User.ID)
	require.Len(t, users.users, 1)
}

func TestAuthService_OAuthLoginLinksByEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	email := "dave@example.com"
	info, err := svc.Register(ctx, model.RegisterRequest{
		Username: "dave",
		Password: "secret123",
		Email:    &email,
	}, model.RoleTeacher)
	require.NoError(t, err)

	pair, err := svc.OAuthLogin(ctx, oauth.Identity{
		Provider:       model.ProviderApple,
		ProviderUserID: "apple-456",
		Email:          email,
	})
	require.NoError(t, err)
	require.Equal(t, info.ID, pair.User.ID)
	require.Equal(t, model.RoleTeacher, pair.User.Role)
}

func TestAuthService_EnsureSuperadmin(t *testing.T) {
	t.Parallel()

	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	// Blank password disables seeding.
	require.NoError(t, svc.EnsureSuperadmin(ctx, "root", "", "root@example.com"))
	require.Empty(t, users.users)

	require.NoError(t, svc.EnsureSuperadmin(ctx, "root", "bootstrap-secret", "root@example.com"))
	seeded, err := users.FindByUsername(ctx, "root")
	require.NoError(t, err)
	require.Equal(t, model.RoleSuperadmin, seeded.Role)

	// Idempotent once a superadmin exists.
	require.NoError(t, svc.EnsureSuperadmin(ctx, "other", "bootstrap-secret", ""))
	require.Len(t, users.users, 1)
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.HTTPStatus)
}
