package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paygate/internal/model"
)

func newTestRegistry(auth Authenticator) (*Registry, *MemoryBackend) {
	backend := NewMemoryBackend()
	newStore := func(sid string) Store {
		return NewMemoryStore(backend, sid)
	}
	return NewRegistry(newStore, auth, zap.NewNop()), backend
}

func TestRegistry_AnonymousVisitorsAreNotRetained(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(nil)

	for i := 0; i < 100; i++ {
		m := r.Resolve(ctx, fmt.Sprintf("crawler-%d", i), false)
		require.Equal(t, StateAnonymous, m.State())
	}

	assert.Equal(t, 0, r.Len(), "anonymous sessions must not accumulate")
}

func TestRegistry_RetainsSessionOnLogin(t *testing.T) {
	ctx := context.Background()
	token := tokenExpiringAt(t, time.Now().Add(time.Hour))

	auth := new(MockAuthenticator)
	auth.On("Login", mock.Anything, "a@b.com", "x").
		Return(token, model.User{ID: 9, Email: "a@b.com", Role: model.RoleHR}, nil)

	r, _ := newTestRegistry(auth)

	m := r.Resolve(ctx, "sid-login", false)
	require.Equal(t, 0, r.Len())

	res := m.Login(ctx, "a@b.com", "x")
	require.True(t, res.OK)
	assert.Equal(t, 1, r.Len())

	// The same instance is handed out on the next request.
	assert.Same(t, m, r.Resolve(ctx, "sid-login", false))

	m.Logout(ctx)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RetainsRehydratedSession(t *testing.T) {
	ctx := context.Background()
	r, backend := newTestRegistry(nil)

	store := NewMemoryStore(backend, "sid-back")
	require.NoError(t, store.Save(ctx, tokenExpiringAt(t, time.Now().Add(time.Hour)), model.User{ID: 3, Role: model.RoleHR}))

	m := r.Resolve(ctx, "sid-back", false)
	require.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, 1, r.Len())

	r.Evict(ctx, "sid-back")
	assert.Equal(t, 0, r.Len())
	_, _, ok := store.Load(ctx)
	assert.False(t, ok, "eviction clears the persisted record")
}

func TestRegistry_ForceFreshDiscardsRetainedSession(t *testing.T) {
	ctx := context.Background()
	r, backend := newTestRegistry(nil)

	store := NewMemoryStore(backend, "sid-force")
	require.NoError(t, store.Save(ctx, tokenExpiringAt(t, time.Now().Add(time.Hour)), model.User{ID: 3}))
	first := r.Resolve(ctx, "sid-force", false)
	require.Equal(t, StateAuthenticated, first.State())

	fresh := r.Resolve(ctx, "sid-force", true)
	assert.Equal(t, StateAnonymous, fresh.State())
	assert.Equal(t, 0, r.Len())
	assert.False(t, first.TimerArmed())
}
