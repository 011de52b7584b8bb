package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/pkg/accountsdk"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
)

// ProfileHandler serves the authenticated account endpoints.
type ProfileHandler struct {
	AccountService *service.AccountService
	MaxUploadBytes int64
}

// HandleChangePassword handles POST /api/v1/users/change-password
//
//	@Summary		Change password
//	@Description	Replaces the password after confirming the old one. The current session is kept.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ChangePasswordRequest	true	"Old and new password"
//	@Success		200		{object}	accountsdk.APIResponse[accountsdk.Empty]
//	@Failure		400		{object}	accountsdk.APIError	"Missing passwords"
//	@Failure		401		{object}	accountsdk.APIError	"Invalid old password"
//	@Router			/api/v1/users/change-password [post].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req accountsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.AccountService.ChangePassword(r.Context(), account.ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, accountsdk.Empty{}, "Password changed successfully")
}

// HandleCurrentUser handles GET /api/v1/users/current-user
//
//	@Summary		Current account
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.APIResponse[accountsdk.Account]
//	@Failure		401	{object}	accountsdk.APIError
//	@Router			/api/v1/users/current-user [get].
func (h *ProfileHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, toAccount(account), "User fetched successfully")
}

// HandleUpdateAccount handles PATCH /api/v1/users/update-account
//
//	@Summary		Update account details
//	@Description	Sets the full name and email. Both are required.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.UpdateAccountRequest	true	"New details"
//	@Success		200		{object}	accountsdk.APIResponse[accountsdk.Account]
//	@Failure		400		{object}	accountsdk.APIError
//	@Failure		401		{object}	accountsdk.APIError
//	@Failure		409		{object}	accountsdk.APIError	"Email already in use"
//	@Router			/api/v1/users/update-account [patch].
func (h *ProfileHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req accountsdk.UpdateAccountRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.AccountService.UpdateAccountDetails(r.Context(), account.ID, req.FullName, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toAccount(updated), "Account details updated successfully")
}

// HandleAvatar handles PATCH /api/v1/users/avatar
//
//	@Summary		Replace avatar
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			avatar	formData	file	true	"Avatar image"
//	@Success		200		{object}	accountsdk.APIResponse[accountsdk.Account]
//	@Failure		400		{object}	accountsdk.APIError	"Missing file or upload failure"
//	@Failure		401		{object}	accountsdk.APIError
//	@Failure		413		{object}	accountsdk.APIError
//	@Router			/api/v1/users/avatar [patch].
func (h *ProfileHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleImage(w, r, "avatar", h.AccountService.UpdateAvatar, "Avatar image updated successfully")
}

// HandleCoverImage handles PATCH /api/v1/users/cover-image
//
//	@Summary		Replace cover image
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			coverImage	formData	file	true	"Cover image"
//	@Success		200			{object}	accountsdk.APIResponse[accountsdk.Account]
//	@Failure		400			{object}	accountsdk.APIError	"Missing file or upload failure"
//	@Failure		401			{object}	accountsdk.APIError
//	@Failure		413			{object}	accountsdk.APIError
//	@Router			/api/v1/users/cover-image [patch].
func (h *ProfileHandler) HandleCoverImage(w http.ResponseWriter, r *http.Request) {
	h.handleImage(w, r, "coverImage", h.AccountService.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdate func(ctx context.Context, accountID string, upload *media.Upload) (domain.Account, error)

func (h *ProfileHandler) handleImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdate, message string) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	upload, closeUpload, err := formUpload(r, field)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeUpload()

	updated, err := update(r.Context(), account.ID, upload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toAccount(updated), message)
}

// HandleWatchHistory handles GET /api/v1/users/history
//
//	@Summary		Watch history
//	@Description	Lists watched video ids, oldest first.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.APIResponse[[]string]
//	@Failure		401	{object}	accountsdk.APIError
//	@Router			/api/v1/users/history [get].
func (h *ProfileHandler) HandleWatchHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r)
	if !ok {
		return
	}

	history, err := h.AccountService.WatchHistory(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if history == nil {
		history = []string{}
	}

	writeData(w, http.StatusOK, history, "Watch history fetched successfully")
}

// HandleChannel handles GET /api/v1/users/c/{username}
//
//	@Summary		Channel profile
//	@Description	Public profile of another account.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	accountsdk.APIResponse[accountsdk.ChannelProfile]
//	@Failure		401			{object}	accountsdk.APIError
//	@Failure		404			{object}	accountsdk.APIError	"No such channel"
//	@Router			/api/v1/users/c/{username} [get].
func (h *ProfileHandler) HandleChannel(w http.ResponseWriter, r *http.Request) {
	channel, err := h.AccountService.Channel(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toChannel(channel), "User channel fetched successfully")
}
