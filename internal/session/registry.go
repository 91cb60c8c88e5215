package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// StoreFactory builds the persistent store for one session ID.
type StoreFactory func(sid string) Store

// Registry tracks the live Manager for each authenticated browser session.
// Managers are created lazily: after a portal restart the persisted record is
// the durable truth and the first request for a session rehydrates it via
// Bootstrap. A manager is only retained once it becomes authenticated;
// anonymous visitors (crawlers, cookie-less curl loops) get a throwaway
// manager per request, so they cannot grow the map.
type Registry struct {
	newStore StoreFactory
	auth     Authenticator
	log      *zap.Logger

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewRegistry creates an empty registry.
func NewRegistry(newStore StoreFactory, auth Authenticator, log *zap.Logger) *Registry {
	return &Registry{
		newStore: newStore,
		auth:     auth,
		log:      log,
		managers: make(map[string]*Manager),
	}
}

// Resolve returns the manager for sid, bootstrapping one if needed.
// forceFresh discards any existing session state first (the forceLogin=true
// entry flag on the login page).
func (r *Registry) Resolve(ctx context.Context, sid string, forceFresh bool) *Manager {
	r.mu.Lock()
	m, exists := r.managers[sid]
	r.mu.Unlock()

	if exists && !forceFresh {
		return m
	}
	if exists {
		// forceFresh: tear the live session down before rebuilding.
		m.Logout(ctx)
	}

	var mgr *Manager
	mgr = NewManager(r.newStore(sid), r.auth, r.log,
		func() { r.retain(sid, mgr) },
		func() { r.remove(sid, mgr) })
	mgr.Bootstrap(ctx, forceFresh)
	return mgr
}

// Evict ends the session for sid immediately: clock cancelled, store
// cleared, manager removed via the session-end hook. Used when the gateway
// observes an upstream 401/403 mid-flight.
func (r *Registry) Evict(ctx context.Context, sid string) {
	r.mu.Lock()
	m, exists := r.managers[sid]
	r.mu.Unlock()
	if exists {
		m.Logout(ctx)
	}
}

// Len returns the number of tracked authenticated sessions, for the
// live-sessions gauge.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

func (r *Registry) retain(sid string, m *Manager) {
	r.mu.Lock()
	r.managers[sid] = m
	r.mu.Unlock()
}

// remove drops the entry only when it still belongs to m, so a stale
// manager ending late cannot unregister its replacement.
func (r *Registry) remove(sid string, m *Manager) {
	r.mu.Lock()
	if r.managers[sid] == m {
		delete(r.managers, sid)
	}
	r.mu.Unlock()
}
