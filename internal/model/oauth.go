package model

import "time"

const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// OAuthAccount links a user to an external identity provider. A user may
// hold several links; a (provider, provider_user_id) pair belongs to at most
// one user.
type OAuthAccount struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"provider_user_id"`
	Email          *string   `json:"email,omitempty"`
	FullName       *string   `json:"full_name,omitempty"`
	Picture        *string   `json:"picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ValidProvider(provider string) bool {
	return provider == ProviderGoogle || provider == ProviderApple
}
