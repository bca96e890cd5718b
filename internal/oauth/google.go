package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleVerifier validates a Google id_token against the tokeninfo endpoint,
// which checks signature and expiry server-side. When the client also sends
// an access token, the userinfo endpoint fills in name and picture.
type GoogleVerifier struct {
	client   *http.Client
	clientID string
}

// NewGoogleVerifier builds a verifier. clientID, when non-empty, is matched
// against the token audience.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		client:   &http.Client{Timeout: 5 * time.Second},
		clientID: clientID,
	}
}

type googleTokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type googleUserInfo struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string, accessToken string) (Identity, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Identity{}, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("google tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("google token verification failed: status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("decode google tokeninfo: %w", err)
	}

	if info.Sub == "" {
		return Identity{}, fmt.Errorf("google token has no subject")
	}
	if v.clientID != "" && info.Aud != v.clientID {
		return Identity{}, fmt.Errorf("google token audience mismatch")
	}

	identity := Identity{
		Provider:       "google",
		ProviderUserID: info.Sub,
		FullName:       info.Name,
		Picture:        info.Picture,
	}
	// Unverified addresses must not be used for account matching.
	if info.EmailVerified == "true" {
		identity.Email = info.Email
	}

	if accessToken != "" {
		if userinfo, err := v.fetchUserInfo(ctx, accessToken); err == nil {
			if userinfo.Name != "" {
				identity.FullName = userinfo.Name
			}
			if userinfo.Picture != "" {
				identity.Picture = userinfo.Picture
			}
		}
	}

	return identity, nil
}

func (v *GoogleVerifier) fetchUserInfo(ctx context.Context, accessToken string) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("google userinfo failed: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}
