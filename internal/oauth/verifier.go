// Package oauth verifies external identity tokens (Google, Apple) and
// reduces them to a provider-neutral Identity consumed by the auth service.
package oauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identity is the verified output of a provider check. Everything past the
// verifier treats it as trusted input.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	FullName       string
	Picture        string
}

// Verifier checks a provider-issued id_token. accessToken is optional and
// only used by providers that expose extra profile data through it.
type Verifier interface {
	Verify(ctx context.Context, idToken string, accessToken string) (Identity, error)
}

// Registry maps provider names to their verifiers.
type Registry map[string]Verifier

func (r Registry) Verify(ctx context.Context, provider string, idToken string, accessToken string) (Identity, error) {
	verifier, ok := r[provider]
	if !ok {
		return Identity{}, fmt.Errorf("unsupported provider %q", provider)
	}
	return verifier.Verify(ctx, idToken, accessToken)
}

// UsernameFromEmail derives a username candidate from the email local part,
// e.g. john.doe@gmail.com -> john_doe_google. Without an email the username
// is random, prefixed with the provider.
func UsernameFromEmail(email string, provider string) string {
	if email == "" {
		return fmt.Sprintf("%s_%s", provider, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}

	local := strings.SplitN(email, "@", 2)[0]
	local = strings.ToLower(local)
	local = strings.ReplaceAll(local, ".", "_")
	local = strings.ReplaceAll(local, "-", "_")

	return fmt.Sprintf("%s_%s", local, provider)
}
