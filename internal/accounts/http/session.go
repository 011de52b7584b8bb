package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/pkg/accountsdk"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
	"github.com/aussiebroadwan/vidtab/pkg/slogx"
)

type ctxKey int

const ctxKeyAccount ctxKey = iota

func withAccount(ctx context.Context, a domain.Account) context.Context {
	return context.WithValue(ctx, ctxKeyAccount, a)
}

// accountFromContext returns the account attached by SessionMiddleware.
func accountFromContext(ctx context.Context) (domain.Account, bool) {
	a, ok := ctx.Value(ctxKeyAccount).(domain.Account)
	return a, ok
}

// SessionMiddleware authenticates the request with an access token from the
// accessToken cookie or a bearer header, and attaches the sanitized account.
func SessionMiddleware(tokens *service.TokenService, accounts *service.AccountService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			token := httpx.TokenFromRequest(r, httpx.AccessTokenCookie)
			if token == "" {
				accountsdk.ErrUnauthorized.WriteError(w)
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				accountsdk.ErrInvalidAccess.WriteError(w)
				return
			}

			account, err := accounts.CurrentAccount(ctx, claims.AccountID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					log.Warn("access token for missing account", "account_id", claims.AccountID)
					accountsdk.ErrInvalidAccess.WriteError(w)
					return
				}
				writeError(w, r, err)
				return
			}

			ctx = withAccount(ctx, account)
			ctx = httpx.WithAccountID(ctx, account.ID)
			ctx = slogx.With(ctx, "account_id", account.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAccount fetches the session account or writes a 401. Handlers behind
// SessionMiddleware always find one.
func requireAccount(w http.ResponseWriter, r *http.Request) (domain.Account, bool) {
	a, ok := accountFromContext(r.Context())
	if !ok {
		accountsdk.ErrUnauthorized.WriteError(w)
	}
	return a, ok
}
