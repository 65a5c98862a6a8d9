package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL is the endpoint returning the signed-in Google profile.
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the identity asserted by the provider.
type Profile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Provider runs the authorization code flow against an identity provider.
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (Profile, error)
}

// GoogleConfig configures GoogleProvider. Endpoint and UserInfoURL default to Google's.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     *oauth2.Endpoint
	UserInfoURL  string
}

// GoogleProvider implements Provider for Google with the profile and email scopes.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates a new GoogleProvider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = GoogleUserInfoURL
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"profile", "email"},
		},
		userInfoURL: userInfoURL,
	}
}

// AuthURL returns the consent page URL carrying state.
func (g *GoogleProvider) AuthURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's profile.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Profile{}, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Profile{}, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return Profile{}, fmt.Errorf("user info for %s has no email", info.ID)
	}

	return Profile{
		ID:      info.ID,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
