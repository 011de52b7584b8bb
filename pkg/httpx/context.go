package httpx

import "context"

type ctxKey string

const (
	// CtxKeyAccountID holds the authenticated account id once the session
	// middleware has run.
	CtxKeyAccountID ctxKey = "account_id"
)

// WithAccountID stores the authenticated account id in ctx.
func WithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyAccountID, id)
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyAccountID).(string)
	return id, ok && id != ""
}
