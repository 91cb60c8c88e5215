package gateway

import (
	"net/http"

	"go.uber.org/zap"
)

// AuthFailureFunc is invoked when the upstream answers 401/403 on a
// session-scoped request, after the session record has been cleared. It is
// an injected callback so forced-logout behavior stays unit-testable.
type AuthFailureFunc func(sid string)

// authTransport attaches the session's bearer token to every outbound
// request and watches every response for authorization failures. It acts on
// the persisted record directly, independent of the session manager's
// in-memory state: a 401 on any in-flight request invalidates the session
// immediately.
type authTransport struct {
	base   http.RoundTripper
	onFail AuthFailureFunc
	log    *zap.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	store, scoped := storeFrom(ctx)

	if scoped {
		if token, _, ok := store.Load(ctx); ok {
			req = req.Clone(ctx)
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if scoped {
			_ = store.Clear(ctx)
			t.log.Info("upstream rejected session credentials",
				zap.Int("status", resp.StatusCode),
				zap.String("path", req.URL.Path))
			if t.onFail != nil {
				t.onFail(sidFrom(ctx))
			}
		}
	}

	// The response is returned unmodified: the caller still observes the
	// failure, the teardown above is a side effect only.
	return resp, nil
}
