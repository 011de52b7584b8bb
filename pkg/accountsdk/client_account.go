package accountsdk

import (
	"context"
	"errors"
	"net/http"
)

// Register creates an account. The avatar is required by the server.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	body, contentType, err := multipartBody(
		map[string]string{
			"username": req.Username,
			"email":    req.Email,
			"fullName": req.FullName,
			"password": req.Password,
		},
		map[string]*File{
			"avatar":     &req.Avatar,
			"coverImage": req.CoverImage,
		},
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, BasePath+"/register", body, contentType, "")
	if err != nil {
		return nil, err
	}

	account, err := decodeData[Account](resp, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Login exchanges credentials for a token pair. Prefer
// AuthenticateWithPassword unless you manage tokens yourself.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, BasePath+"/login", body, "application/json", "")
	if err != nil {
		return nil, err
	}

	login, err := decodeData[LoginResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &login, nil
}

// Refresh rotates a refresh token. The token passed in is spent either way
// once the server accepts it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	body, err := jsonBody(RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, BasePath+"/refresh-token", body, "application/json", "")
	if err != nil {
		return nil, err
	}

	tokens, err := decodeData[TokenResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}
