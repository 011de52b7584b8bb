package accountsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CurrentUser returns the authenticated account.
func (s *Session) CurrentUser(ctx context.Context) (*Account, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, BasePath+"/current-user", nil, "")
	if err != nil {
		return nil, err
	}

	account, err := decodeData[Account](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Logout ends the session server-side. The session's refresh token is
// dropped; the access token keeps working until it expires.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, BasePath+"/logout", nil, "")
	if err != nil {
		return err
	}
	if _, err := decodeData[Empty](resp, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// ChangePassword replaces the password after the server confirms the old one.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body, err := jsonBody(ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword})
	if err != nil {
		return err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, BasePath+"/change-password", body, "application/json")
	if err != nil {
		return err
	}
	_, err = decodeData[Empty](resp, http.StatusOK)
	return err
}

// UpdateAccount sets the full name and email.
func (s *Session) UpdateAccount(ctx context.Context, req UpdateAccountRequest) (*Account, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPatch, BasePath+"/update-account", body, "application/json")
	if err != nil {
		return nil, err
	}

	account, err := decodeData[Account](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAvatar uploads a new avatar.
func (s *Session) UpdateAvatar(ctx context.Context, f File) (*Account, error) {
	return s.uploadImage(ctx, "/avatar", "avatar", f)
}

// UpdateCoverImage uploads a new cover image.
func (s *Session) UpdateCoverImage(ctx context.Context, f File) (*Account, error) {
	return s.uploadImage(ctx, "/cover-image", "coverImage", f)
}

func (s *Session) uploadImage(ctx context.Context, path, field string, f File) (*Account, error) {
	body, contentType, err := multipartBody(nil, map[string]*File{field: &f})
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPatch, BasePath+path, body, contentType)
	if err != nil {
		return nil, err
	}

	account, err := decodeData[Account](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// WatchHistory lists the video references the account has watched.
func (s *Session) WatchHistory(ctx context.Context) ([]string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, BasePath+"/history", nil, "")
	if err != nil {
		return nil, err
	}
	return decodeData[[]string](resp, http.StatusOK)
}

// Channel fetches another user's public profile.
func (s *Session) Channel(ctx context.Context, username string) (*ChannelProfile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, BasePath+"/c/"+url.PathEscape(username), nil, "")
	if err != nil {
		return nil, err
	}

	profile, err := decodeData[ChannelProfile](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
