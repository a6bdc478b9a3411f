// Package github exchanges OAuth authorization codes against GitHub and
// resolves the authenticated user's identity.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// UserInfo is the subset of the GitHub user profile the application needs
type UserInfo struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Client performs the authorization code exchange and user lookup.
// GitHub OAuth apps issue non-expiring tokens and no refresh tokens, so a
// single exchange per code is all that ever happens.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
}

// NewClient creates a GitHub OAuth client for the given app credentials
func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githuboauth.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: "https://api.github.com",
	}
}

// ExchangeCode exchanges an authorization code for an access token and fetches
// the user behind it. The code is consumed by GitHub on the first exchange;
// the caller is responsible for never exchanging the same code twice.
// The exchange is cancelled when ctx is cancelled.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	user, err := c.fetchUser(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch github user: %w", err)
	}

	return user, nil
}

// fetchUser retrieves the authenticated user from the GitHub API
func (c *Client) fetchUser(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user request returned status %d", resp.StatusCode)
	}

	var user UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	if user.Login == "" {
		return nil, fmt.Errorf("user response missing login")
	}

	return &user, nil
}
