package gateway

import (
	"context"

	"paygate/internal/session"
)

type ctxKey int

const (
	storeKey ctxKey = iota
	sidKey
)

// WithSession scopes an outbound request context to one browser session.
// The transport reads the bearer token from the store and, on an upstream
// auth failure, clears exactly this session's record.
func WithSession(ctx context.Context, store session.Store, sid string) context.Context {
	ctx = context.WithValue(ctx, storeKey, store)
	return context.WithValue(ctx, sidKey, sid)
}

func storeFrom(ctx context.Context) (session.Store, bool) {
	s, ok := ctx.Value(storeKey).(session.Store)
	return s, ok
}

func sidFrom(ctx context.Context) string {
	sid, _ := ctx.Value(sidKey).(string)
	return sid
}
