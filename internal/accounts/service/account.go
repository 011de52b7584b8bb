package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/pkg/cryptox"
	"github.com/aussiebroadwan/vidtab/pkg/jwtx"
	"github.com/aussiebroadwan/vidtab/pkg/slogx"
)

type AccountService struct {
	Store      store.Store
	Tokens     *TokenService
	Media      media.Store
	BcryptCost int // 0 means cryptox.DefaultCost
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string

	Avatar     *media.Upload // required
	CoverImage *media.Upload
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an account. Uploads happen after the uniqueness check so a
// rejected registration never leaves files behind.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	username := domain.NormalizeHandle(in.Username)
	email := domain.NormalizeHandle(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return domain.Account{}, validationError("All fields are required")
	}

	_, err := s.Store.Accounts().GetByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return domain.Account{}, newError(KindConflict, "User with email or username already exists", nil)
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, internalError("Something went wrong while registering the user", err)
	}

	if in.Avatar == nil {
		return domain.Account{}, validationError("Avatar file is required")
	}
	if err := media.Check(*in.Avatar); err != nil {
		return domain.Account{}, unsupportedImage("Avatar", err)
	}
	if in.CoverImage != nil {
		if err := media.Check(*in.CoverImage); err != nil {
			return domain.Account{}, unsupportedImage("Cover image", err)
		}
	}
	avatarURL, err := s.upload(ctx, *in.Avatar, media.KindAvatar)
	if err != nil || avatarURL == "" {
		l.Warn("avatar upload failed", slog.String("username", username), "err", err)
		return domain.Account{}, validationError("Avatar file is required")
	}

	// A failed cover upload is not fatal; the account just has none.
	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = s.upload(ctx, *in.CoverImage, media.KindCoverImage)
		if err != nil {
			l.Warn("cover image upload failed", slog.String("username", username), "err", err)
			coverURL = ""
		}
	}

	hash, err := cryptox.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return domain.Account{}, passwordError(err)
	}

	created, err := s.Store.Accounts().Create(ctx, domain.Account{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, newError(KindConflict, "User with email or username already exists", err)
		}
		return domain.Account{}, internalError("Something went wrong while registering the user", err)
	}

	account, err := s.Store.Accounts().GetByID(ctx, created.ID)
	if err != nil {
		return domain.Account{}, internalError("Something went wrong while registering the user", err)
	}

	l.Info("account registered", slog.String("account_id", account.ID), slog.String("username", account.Username))
	return account.Sanitized(), nil
}

// Login checks credentials and starts a new session, replacing any previous
// refresh token.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (domain.Account, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	username := domain.NormalizeHandle(in.Username)
	email := domain.NormalizeHandle(in.Email)
	if username == "" && email == "" {
		return domain.Account{}, domain.TokenPair{}, validationError("username or email is required")
	}

	account, err := s.Store.Accounts().GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, domain.TokenPair{}, newError(KindNotFound, "User does not exist", err)
		}
		return domain.Account{}, domain.TokenPair{}, internalError("Something went wrong while logging in", err)
	}

	if err := cryptox.VerifyPassword(in.Password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login rejected", slog.String("account_id", account.ID))
			return domain.Account{}, domain.TokenPair{}, newError(KindAuthentication, "Invalid user credentials", err)
		}
		return domain.Account{}, domain.TokenPair{}, internalError("Something went wrong while logging in", err)
	}

	pair, err := s.Tokens.IssuePair(ctx, account)
	if err != nil {
		return domain.Account{}, domain.TokenPair{}, internalError("Something went wrong while generating tokens", err)
	}

	l.Info("account logged in", slog.String("account_id", account.ID))
	return account.Sanitized(), pair, nil
}

// Logout clears the refresh slot. Outstanding access tokens stay valid until
// they expire.
func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	err := s.Store.Accounts().SetRefreshToken(ctx, accountID, "")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return internalError("Something went wrong while logging out", err)
	}
	slogx.FromContext(ctx).Info("account logged out", slog.String("account_id", accountID))
	return nil
}

// RefreshAccessToken rotates a refresh token into a new pair.
func (s *AccountService) RefreshAccessToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(refreshToken) == "" {
		return domain.TokenPair{}, newError(KindAuthentication, "Unauthorized request", nil)
	}

	pair, account, err := s.Tokens.Rotate(ctx, refreshToken)
	switch {
	case err == nil:
		l.Info("refresh token rotated", slog.String("account_id", account.ID))
		return pair, nil
	case errors.Is(err, ErrRefreshReused), errors.Is(err, jwtx.ErrExpired):
		l.Info("refresh rejected", "err", err)
		return domain.TokenPair{}, newError(KindAuthentication, "Refresh token is expired or used", err)
	case errors.Is(err, jwtx.ErrInvalidToken):
		l.Info("refresh rejected", "err", err)
		return domain.TokenPair{}, newError(KindAuthentication, "Invalid refresh token", err)
	default:
		return domain.TokenPair{}, internalError("Something went wrong while refreshing the session", err)
	}
}

// ChangePassword replaces the password after the old one is confirmed.
// Existing sessions are kept.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return validationError("Old and new passwords are required")
	}

	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(oldPassword, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return newError(KindAuthentication, "Invalid old password", err)
		}
		return internalError("Something went wrong while changing the password", err)
	}

	hash, err := cryptox.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return passwordError(err)
	}

	if err := s.Store.Accounts().UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return s.storeError(err, "Something went wrong while changing the password")
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("account_id", account.ID))
	return nil
}

// CurrentAccount returns the sanitized account.
func (s *AccountService) CurrentAccount(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	return account.Sanitized(), nil
}

// UpdateAccountDetails sets the full name and email together.
func (s *AccountService) UpdateAccountDetails(ctx context.Context, accountID, fullName, email string) (domain.Account, error) {
	fullName = strings.TrimSpace(fullName)
	email = domain.NormalizeHandle(email)
	if fullName == "" || email == "" {
		return domain.Account{}, validationError("All fields are required")
	}

	if err := s.Store.Accounts().UpdateDetails(ctx, accountID, fullName, email); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, newError(KindConflict, "Email is already in use", err)
		}
		return domain.Account{}, s.storeError(err, "Something went wrong while updating the account")
	}

	return s.CurrentAccount(ctx, accountID)
}

// UpdateAvatar uploads a replacement avatar and points the account at it.
// The previous file is left in place.
func (s *AccountService) UpdateAvatar(ctx context.Context, accountID string, upload *media.Upload) (domain.Account, error) {
	if upload == nil {
		return domain.Account{}, validationError("Avatar file is missing")
	}

	if err := media.Check(*upload); err != nil {
		return domain.Account{}, unsupportedImage("Avatar", err)
	}

	url, err := s.upload(ctx, *upload, media.KindAvatar)
	if err != nil || url == "" {
		slogx.FromContext(ctx).Warn("avatar upload failed", slog.String("account_id", accountID), "err", err)
		return domain.Account{}, validationError("Error while uploading avatar")
	}

	if err := s.Store.Accounts().UpdateAvatar(ctx, accountID, url); err != nil {
		return domain.Account{}, s.storeError(err, "Something went wrong while updating the avatar")
	}
	return s.CurrentAccount(ctx, accountID)
}

// UpdateCoverImage uploads a replacement cover image.
func (s *AccountService) UpdateCoverImage(ctx context.Context, accountID string, upload *media.Upload) (domain.Account, error) {
	if upload == nil {
		return domain.Account{}, validationError("Cover image file is missing")
	}

	if err := media.Check(*upload); err != nil {
		return domain.Account{}, unsupportedImage("Cover image", err)
	}

	url, err := s.upload(ctx, *upload, media.KindCoverImage)
	if err != nil || url == "" {
		slogx.FromContext(ctx).Warn("cover image upload failed", slog.String("account_id", accountID), "err", err)
		return domain.Account{}, validationError("Error while uploading cover image")
	}

	if err := s.Store.Accounts().UpdateCoverImage(ctx, accountID, url); err != nil {
		return domain.Account{}, s.storeError(err, "Something went wrong while updating the cover image")
	}
	return s.CurrentAccount(ctx, accountID)
}

// WatchHistory lists the account's watched video references, oldest first.
func (s *AccountService) WatchHistory(ctx context.Context, accountID string) ([]string, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Sanitized().WatchHistory, nil
}

// Channel looks up another user's public profile by username.
func (s *AccountService) Channel(ctx context.Context, username string) (domain.Account, error) {
	username = domain.NormalizeHandle(username)
	if username == "" {
		return domain.Account{}, validationError("username is missing")
	}

	account, err := s.Store.Accounts().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, newError(KindNotFound, "channel does not exist", err)
		}
		return domain.Account{}, internalError("Something went wrong while fetching the channel", err)
	}
	return account.Sanitized(), nil
}

func (s *AccountService) getAccount(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, s.storeError(err, "Something went wrong while fetching the account")
	}
	return account, nil
}

func (s *AccountService) storeError(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, "User does not exist", err)
	}
	return internalError(message, err)
}

func (s *AccountService) upload(ctx context.Context, u media.Upload, kind media.Kind) (string, error) {
	if s.Media == nil {
		return "", errors.New("no media store configured")
	}
	u.Kind = kind
	return s.Media.Put(ctx, u)
}

func unsupportedImage(what string, err error) error {
	return newError(KindValidation, what+" must be a png, jpeg, gif or webp image", err)
}

func passwordError(err error) error {
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return validationError("Password must be at most 72 bytes")
	}
	return internalError("Something went wrong while hashing the password", err)
}
