package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/pkg/accountsdk"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
	"github.com/aussiebroadwan/vidtab/pkg/slogx"
)

func writeData[T any](w http.ResponseWriter, status int, data T, message string) {
	httpx.WriteJSON(w, status, accountsdk.NewAPIResponse(status, data, message))
}

// writeError is the only place errors become responses. Service errors keep
// their kind and message; anything else is a 500 whose cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var se *service.Error
	if errors.As(err, &se) {
		if se.Kind == service.KindInternal {
			log.Error("request failed", "err", err)
		}
		accountsdk.NewAPIError(se.Kind.StatusCode(), se.Message).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, httpx.ErrBodyTooLarge):
		accountsdk.NewAPIError(http.StatusRequestEntityTooLarge, "Request body too large").WriteError(w)
	case errors.Is(err, httpx.ErrInvalidJSON):
		accountsdk.NewAPIError(http.StatusBadRequest, "Invalid request body").WriteError(w)
	default:
		log.Error("unhandled error", "err", err)
		accountsdk.ErrInternal.WriteError(w)
	}
}

func toAccount(a domain.Account) accountsdk.Account {
	a = a.Sanitized()
	history := a.WatchHistory
	if history == nil {
		history = []string{}
	}
	return accountsdk.Account{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		FullName:     a.FullName,
		Avatar:       a.AvatarURL,
		CoverImage:   a.CoverImageURL,
		WatchHistory: history,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toChannel(a domain.Account) accountsdk.ChannelProfile {
	return accountsdk.ChannelProfile{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FullName:   a.FullName,
		Avatar:     a.AvatarURL,
		CoverImage: a.CoverImageURL,
		CreatedAt:  a.CreatedAt,
	}
}
