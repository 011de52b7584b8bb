package http

import (
	"net/http"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/pkg/accountsdk"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
)

// SessionsHandler handles registration and the token lifecycle endpoints.
type SessionsHandler struct {
	AccountService *service.AccountService
	MaxUploadBytes int64
}

// HandleRegister handles POST /api/v1/users/register
//
//	@Summary		Register an account
//	@Description	Creates an account from a multipart form. The avatar file is required, the cover image is optional.
//	@Tags			Users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			username	formData	string	true	"Unique username"
//	@Param			email		formData	string	true	"Unique email"
//	@Param			fullName	formData	string	true	"Display name"
//	@Param			password	formData	string	true	"Password"
//	@Param			avatar		formData	file	true	"Avatar image"
//	@Param			coverImage	formData	file	false	"Cover image"
//	@Success		201			{object}	accountsdk.APIResponse[accountsdk.Account]
//	@Failure		400			{object}	accountsdk.APIError	"Missing fields or avatar"
//	@Failure		409			{object}	accountsdk.APIError	"Username or email taken"
//	@Failure		413			{object}	accountsdk.APIError	"Upload too large"
//	@Failure		500			{object}	accountsdk.APIError
//	@Router			/api/v1/users/register [post].
func (h *SessionsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	avatar, closeAvatar, err := formUpload(r, "avatar")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeAvatar()

	cover, closeCover, err := formUpload(r, "coverImage")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeCover()

	account, err := h.AccountService.Register(ctx, service.RegisterInput{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		FullName:   r.FormValue("fullName"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toAccount(account), "User registered Successfully")
}

// HandleLogin handles POST /api/v1/users/login
//
//	@Summary		Log in
//	@Description	Checks credentials and starts a session. Tokens are returned in the body and as httpOnly cookies.
//	@Description	Any previous session of the account is replaced.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest	true	"Username or email, and password"
//	@Success		200		{object}	accountsdk.APIResponse[accountsdk.LoginResponse]
//	@Failure		400		{object}	accountsdk.APIError	"Missing identifier"
//	@Failure		401		{object}	accountsdk.APIError	"Invalid credentials"
//	@Failure		404		{object}	accountsdk.APIError	"Unknown account"
//	@Router			/api/v1/users/login [post].
func (h *SessionsHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, pair, err := h.AccountService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookies(w, pair)
	writeData(w, http.StatusOK, accountsdk.LoginResponse{
		User:         toAccount(account),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged In Successfully")
}

// HandleLogout handles POST /api/v1/users/logout
//
//	@Summary		Log out
//	@Description	Ends the current session and clears the token cookies. Access tokens already issued stay valid until they expire.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.APIResponse[accountsdk.Empty]
//	@Failure		401	{object}	accountsdk.APIError
//	@Router			/api/v1/users/logout [post].
func (h *SessionsHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	if err := h.AccountService.Logout(r.Context(), account.ID); err != nil {
		writeError(w, r, err)
		return
	}

	clearSessionCookies(w)
	writeData(w, http.StatusOK, accountsdk.Empty{}, "User logged Out")
}

// HandleRefresh handles POST /api/v1/users/refresh-token
//
//	@Summary		Refresh the session
//	@Description	Exchanges the current refresh token, from the refreshToken cookie or the body, for a new pair.
//	@Description	Each refresh token can be exchanged once.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RefreshRequest	false	"Refresh token when no cookie is sent"
//	@Success		200		{object}	accountsdk.APIResponse[accountsdk.TokenResponse]
//	@Failure		401		{object}	accountsdk.APIError	"Missing, invalid, expired or used refresh token"
//	@Router			/api/v1/users/refresh-token [post].
func (h *SessionsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(httpx.RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req accountsdk.RefreshRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		token = req.RefreshToken
	}

	pair, err := h.AccountService.RefreshAccessToken(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setSessionCookies(w, pair)
	writeData(w, http.StatusOK, accountsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

func setSessionCookies(w http.ResponseWriter, pair domain.TokenPair) {
	httpx.SetTokenCookie(w, httpx.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresIn)
	httpx.SetTokenCookie(w, httpx.RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresIn)
}

func clearSessionCookies(w http.ResponseWriter) {
	httpx.ClearTokenCookie(w, httpx.AccessTokenCookie)
	httpx.ClearTokenCookie(w, httpx.RefreshTokenCookie)
}
