package accountsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// BasePath is where the account routes are mounted.
const BasePath = "/api/v1/users"

// Client talks to the accounts service. It covers the unauthenticated
// endpoints and creates Sessions for the rest.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthenticateWithPassword logs in and returns a session holding both tokens.
func (c *Client) AuthenticateWithPassword(ctx context.Context, req LoginRequest) (*Session, error) {
	login, err := c.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(login.AccessToken, login.RefreshToken), nil
}

// AuthenticateWithRefreshToken rotates refreshToken and returns a session
// for the new pair.
func (c *Client) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tokens, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(tokens.AccessToken, tokens.RefreshToken), nil
}

// NewSessionFromTokens wraps tokens obtained elsewhere. The session refreshes
// the access token shortly before it expires.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    refreshDeadline(accessToken),
	}
}
