package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	appleJWKSURL = "https://appleid.apple.com/auth/keys"
	appleIssuer  = "https://appleid.apple.com"
)

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// AppleVerifier validates an Apple Sign In id_token against Apple's
// published signing keys. Keys are cached and refetched when an unknown kid
// shows up (Apple rotates them).
type AppleVerifier struct {
	client   *http.Client
	clientID string

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

func NewAppleVerifier(clientID string) *AppleVerifier {
	return &AppleVerifier{
		client:   &http.Client{Timeout: 5 * time.Second},
		clientID: clientID,
		keys:     map[string]*rsa.PublicKey{},
	}
}

type appleClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"` // Apple sends bool or "true"
	jwt.RegisteredClaims
}

func (v *AppleVerifier) Verify(ctx context.Context, idToken string, _ string) (Identity, error) {
	claims := &appleClaims{}
	parsed, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("apple token has no kid header")
		}
		return v.publicKey(ctx, kid)
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("apple token verification failed: %w", err)
	}

	if claims.Issuer != appleIssuer {
		return Identity{}, fmt.Errorf("apple token issuer mismatch")
	}
	if v.clientID != "" && !containsAudience(claims.Audience, v.clientID) {
		return Identity{}, fmt.Errorf("apple token audience mismatch")
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("apple token has no subject")
	}

	identity := Identity{
		Provider:       "apple",
		ProviderUserID: claims.Subject,
	}
	if emailVerified(claims.EmailVerified) {
		identity.Email = claims.Email
	}
	// Apple only includes email on the first sign-in and never a name in
	// the id_token; later logins identify the user by subject alone.
	return identity, nil
}

func (v *AppleVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	v.mu.RUnlock()
	if ok {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no apple signing key with kid %q", kid)
	}
	return key, nil
}

func (v *AppleVerifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, appleJWKSURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch apple jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch apple jwks: status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode apple jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaKeyFromJWK(k)
		if err != nil {
			return err
		}
		keys[k.Kid] = pub
	}

	v.mu.Lock()
	v.keys = keys
	v.mu.Unlock()
	return nil
}

func rsaKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode jwk modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode jwk exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

func containsAudience(aud jwt.ClaimStrings, clientID string) bool {
	for _, a := range aud {
		if a == clientID {
			return true
		}
	}
	return false
}

func emailVerified(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
