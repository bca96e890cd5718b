package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-edu-platform/internal/model"
	"go-edu-platform/internal/oauth"
	"go-edu-platform/pkg/apierror"
)

const minPasswordLength = 6

// UserStore is the storage surface the auth service needs. Uniqueness of
// username, email and (provider, provider_user_id) is enforced by the store;
// the service translates violations instead of coordinating in-process.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u model.User) error
	UpdateRole(ctx context.Context, id string, role model.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context) ([]model.UserInfo, error)
	ExistsByRole(ctx context.Context, role model.Role) (bool, error)
}

type OAuthStore interface {
	FindByProviderUserID(ctx context.Context, provider string, providerUserID string) (model.OAuthAccount, error)
	Create(ctx context.Context, a model.OAuthAccount) error
	UpdateProfile(ctx context.Context, id string, email *string, fullName *string, picture *string) error
}

type AuthService struct {
	tokens *TokenService
	users  UserStore
	oauth  OAuthStore
}

func NewAuthService(tokens *TokenService, users UserStore, oauthStore OAuthStore) *AuthService {
	return &AuthService{tokens: tokens, users: users, oauth: oauthStore}
}

// Register creates an account with the given role. Role gating of who may
// call this for which role happens at the route level; the service only
// validates input and relies on storage constraints for uniqueness.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, role model.Role) (model.UserInfo, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return model.UserInfo{}, apierror.BadRequest("username and password are required", "")
	}
	if len(req.Password) < minPasswordLength {
		return model.UserInfo{}, apierror.BadRequest(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}
	if !role.Valid() {
		return model.UserInfo{}, apierror.BadRequest("invalid role", string(role))
	}

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.UserInfo{}, err
	} else if exists {
		return model.UserInfo{}, apierror.Conflict("username already registered", username)
	}

	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		_, err := s.users.FindByEmail(ctx, *req.Email)
		if err == nil {
			return model.UserInfo{}, apierror.Conflict("email already registered", *req.Email)
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return model.UserInfo{}, err
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return model.UserInfo{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration may win the race; storage reports it.
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.UserInfo{}, apierror.Conflict("username or email already registered", username)
		}
		return model.UserInfo{}, err
	}

	return user.Info(), nil
}

// Login checks credentials and returns a fresh token pair. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, apierror.Unauthorized("invalid credentials")
		}
		return model.TokenPair{}, err
	}

	if user.PasswordHash == nil || !VerifyPassword(password, *user.PasswordHash) {
		return model.TokenPair{}, apierror.Unauthorized("invalid credentials")
	}

	if !user.IsActive {
		return model.TokenPair{}, apierror.Forbidden("account is deactivated")
	}

	return s.issueTokenPair(user)
}

// Refresh trades a valid refresh token for a new pair. The principal is
// re-read from storage, so a deactivation or role change applied since the
// refresh token was minted takes effect here.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken, TokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, apierror.Unauthorized("invalid or expired refresh token")
		}
		return model.TokenPair{}, err
	}

	if !user.IsActive {
		return model.TokenPair{}, apierror.Forbidden("account is deactivated")
	}

	return s.issueTokenPair(user)
}

// Authenticate resolves the principal behind an access token: decode, load
// by token subject, reject deactivated accounts. This is the middleware's
// single entry point into the auth core.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := s.tokens.Decode(accessToken, TokenTypeAccess)
	if err != nil {
		return model.User{}, apierror.Unauthorized("invalid or expired token")
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, apierror.Unauthorized("invalid or expired token")
		}
		return model.User{}, err
	}

	if !user.IsActive {
		return model.User{}, apierror.Forbidden("account is deactivated")
	}

	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}
	return user.Info(), nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.UserInfo, error) {
	return s.users.List(ctx)
}

// ChangeRole sets target's role. The route is admin-gated; on top of that,
// granting superadmin requires the actor to already be superadmin.
func (s *AuthService) ChangeRole(ctx context.Context, actor model.User, targetID string, newRole model.Role) (model.UserInfo, error) {
	if !newRole.Valid() {
		return model.UserInfo{}, apierror.BadRequest("invalid role", string(newRole))
	}

	if !actor.Role.IsAdmin() {
		return model.UserInfo{}, apierror.Forbidden("admin privileges required")
	}

	if newRole == model.RoleSuperadmin && !actor.Role.IsSuperadmin() {
		return model.UserInfo{}, apierror.New("SUPERADMIN_REQUIRED",
			"only a superadmin can grant the superadmin role", "", 403)
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return model.UserInfo{}, err
	}

	if err := s.users.UpdateRole(ctx, target.ID, newRole); err != nil {
		return model.UserInfo{}, err
	}

	target.Role = newRole
	slog.Info("user role changed", "user_id", target.ID, "new_role", newRole, "actor_id", actor.ID)
	return target.Info(), nil
}

// SetUserActive deactivates or reactivates an account. Deactivation is soft:
// the row stays, but login, refresh and authenticated requests start failing.
func (s *AuthService) SetUserActive(ctx context.Context, actor model.User, targetID string, active bool) (model.UserInfo, error) {
	if !actor.Role.IsAdmin() {
		return model.UserInfo{}, apierror.Forbidden("admin privileges required")
	}

	if actor.ID == targetID && !active {
		return model.UserInfo{}, apierror.BadRequest("cannot deactivate your own account", "")
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return model.UserInfo{}, err
	}

	if target.Role.IsSuperadmin() && !actor.Role.IsSuperadmin() {
		return model.UserInfo{}, apierror.New("SUPERADMIN_REQUIRED",
			"only a superadmin can deactivate a superadmin", "", 403)
	}

	if err := s.users.SetActive(ctx, target.ID, active); err != nil {
		return model.UserInfo{}, err
	}

	target.IsActive = active
	slog.Info("user active status changed", "user_id", target.ID, "is_active", active, "actor_id", actor.ID)
	return target.Info(), nil
}

// OAuthLogin resolves-or-creates the principal behind a verified external
// identity and issues tokens as a normal login would. identity comes from a
// provider verifier and is trusted here.
func (s *AuthService) OAuthLogin(ctx context.Context, identity oauth.Identity) (model.TokenPair, error) {
	account, err := s.oauth.FindByProviderUserID(ctx, identity.Provider, identity.ProviderUserID)
	if err == nil {
		// Known link: refresh the provider profile and log in.
		if uerr := s.oauth.UpdateProfile(ctx, account.ID,
			optional(identity.Email), optional(identity.FullName), optional(identity.Picture)); uerr != nil {
			return model.TokenPair{}, uerr
		}

		user, ferr := s.users.FindByID(ctx, account.UserID)
		if ferr != nil {
			return model.TokenPair{}, ferr
		}
		if !user.IsActive {
			return model.TokenPair{}, apierror.Forbidden("account is deactivated")
		}
		return s.issueTokenPair(user)
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, err
	}

	user, err := s.resolveOAuthUser(ctx, identity)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now().UTC()
	link := model.OAuthAccount{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Provider:       identity.Provider,
		ProviderUserID: identity.ProviderUserID,
		Email:          optional(identity.Email),
		FullName:       optional(identity.FullName),
		Picture:        optional(identity.Picture),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.oauth.Create(ctx, link); err != nil {
		// A concurrent login for the same identity created the link first;
		// treat the conflict as a lookup.
		if errors.Is(err, model.ErrAlreadyExists) {
			existing, ferr := s.oauth.FindByProviderUserID(ctx, identity.Provider, identity.ProviderUserID)
			if ferr != nil {
				return model.TokenPair{}, ferr
			}
			user, ferr = s.users.FindByID(ctx, existing.UserID)
			if ferr != nil {
				return model.TokenPair{}, ferr
			}
		} else {
			return model.TokenPair{}, err
		}
	}

	if !user.IsActive {
		return model.TokenPair{}, apierror.Forbidden("account is deactivated")
	}

	return s.issueTokenPair(user)
}

// resolveOAuthUser finds an existing account by email or provisions a new
// client account with no password.
func (s *AuthService) resolveOAuthUser(ctx context.Context, identity oauth.Identity) (model.User, error) {
	if identity.Email != "" {
		user, err := s.users.FindByEmail(ctx, identity.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, err
		}
	}

	username, err := s.uniqueUsername(ctx, oauth.UsernameFromEmail(identity.Email, identity.Provider))
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     optional(identity.Email),
		FullName:  optional(identity.FullName),
		Role:      model.RoleClient,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) && identity.Email != "" {
			// Lost a race against a concurrent signup with the same email.
			return s.users.FindByEmail(ctx, identity.Email)
		}
		return model.User{}, err
	}

	return user, nil
}

func (s *AuthService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
	}
}

// EnsureSuperadmin bootstraps the first superadmin account from config when
// none exists. A blank password disables seeding.
func (s *AuthService) EnsureSuperadmin(ctx context.Context, username string, password string, email string) error {
	if password == "" {
		return nil
	}

	exists, err := s.users.ExistsByRole(ctx, model.RoleSuperadmin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	req := model.RegisterRequest{Username: username, Password: password}
	if email != "" {
		req.Email = &email
	}

	info, err := s.Register(ctx, req, model.RoleSuperadmin)
	if err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}

	slog.Info("seeded superadmin account", "username", info.Username)
	return nil
}

func (s *AuthService) issueTokenPair(user model.User) (model.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccess(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		User:         user.Info(),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
