package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-edu-platform/internal/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenService issues and validates self-contained HS256 session tokens.
// Tokens are never persisted: a token is valid exactly while its signature
// checks out and its expiry has not passed. The embedded role is a snapshot
// taken at issue time, so a role change becomes visible only once the
// outstanding access token expires or is refreshed.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL time.Duration, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccess mints an access token carrying the user's identity and role.
func (s *TokenService) IssueAccess(user model.User) (string, error) {
	now := time.Now().UTC()
	return s.sign(jwt.MapClaims{
		"sub":     user.Username,
		"user_id": user.ID,
		"role":    string(user.Role),
		"typ":     TokenTypeAccess,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.accessTTL).Unix(),
	})
}

// IssueRefresh mints a refresh token. It deliberately carries no role so it
// cannot pass for an access token at the authorization gate.
func (s *TokenService) IssueRefresh(user model.User) (string, error) {
	now := time.Now().UTC()
	return s.sign(jwt.MapClaims{
		"sub":     user.Username,
		"user_id": user.ID,
		"typ":     TokenTypeRefresh,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.refreshTTL).Unix(),
	})
}

// Decode verifies signature and expiry before trusting any claim, then
// checks the token type. Every failure mode collapses to ErrInvalidToken.
func (s *TokenService) Decode(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, model.ErrInvalidToken
	}

	claims := &model.AuthClaims{Type: typ}
	claims.Username, _ = claimsMap["sub"].(string)
	claims.UserID, _ = claimsMap["user_id"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)
	if role, ok := claimsMap["role"].(string); ok {
		claims.Role = model.Role(role)
	}

	if claims.Username == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
