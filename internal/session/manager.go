package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	errs "paygate/internal/errors"
	"paygate/internal/model"
)

// State is the lifecycle phase of a session manager.
type State int

const (
	// StateBootstrapping is the initial state, before the persisted record
	// has been examined.
	StateBootstrapping State = iota
	// StateAnonymous means no valid session exists.
	StateAnonymous
	// StateAuthenticated means a token and profile are live and unexpired.
	StateAuthenticated
)

// genericLoginMessage is shown when the upstream error body carries none.
const genericLoginMessage = "Login failed"

// Authenticator calls the upstream authentication endpoint. Implemented by
// the gateway client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, user model.User, err error)
}

// LoginResult is the typed outcome of a login attempt. Credential and
// network failures surface here, never as a panic or a raw error.
type LoginResult struct {
	OK      bool
	Message string
}

// Manager owns the authentication state of one browser session: the token,
// the cached profile, and the automatic-logout clock. The invariant it
// maintains is that user and token are either both set and unexpired or both
// absent.
type Manager struct {
	store Store
	clock *Clock
	auth  Authenticator
	log   *zap.Logger

	// onAuth runs whenever the session becomes authenticated, from either a
	// bootstrap rehydration or a login. The registry uses it to start
	// tracking the manager.
	onAuth func()
	// onEnd runs once when the session ends for any reason (logout, expiry).
	onEnd func()

	mu      sync.Mutex
	state   State
	token   string
	user    *model.User
	lastErr string
}

// NewManager creates a manager for one session. onAuth and onEnd may be nil.
func NewManager(store Store, auth Authenticator, log *zap.Logger, onAuth, onEnd func()) *Manager {
	return &Manager{
		store:  store,
		clock:  &Clock{},
		auth:   auth,
		log:    log,
		onAuth: onAuth,
		onEnd:  onEnd,
		state:  StateBootstrapping,
	}
}

// Bootstrap examines the persisted record once and settles the manager into
// ANONYMOUS or AUTHENTICATED. forceFresh discards any persisted session
// first, regardless of its validity (the forceLogin=true entry flag).
func (m *Manager) Bootstrap(ctx context.Context, forceFresh bool) {
	if forceFresh {
		_ = m.store.Clear(ctx)
		m.setAnonymous()
		return
	}

	token, user, ok := m.store.Load(ctx)
	if !ok {
		m.setAnonymous()
		return
	}

	exp, err := TokenExpiry(token)
	if err != nil || TokenExpired(token) {
		// Expired or undecodable: the record is useless, drop it.
		_ = m.store.Clear(ctx)
		m.setAnonymous()
		return
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.token = token
	m.user = user
	m.mu.Unlock()

	// onAuth runs before the clock is armed so a near-immediate expiry
	// cannot end a session its owner has not started tracking yet.
	if m.onAuth != nil {
		m.onAuth()
	}
	m.clock.Schedule(exp, m.expire)
	m.log.Debug("session rehydrated",
		zap.String("email", user.Email),
		zap.Time("expires", exp))
}

// Login authenticates against the upstream and, on success, persists the
// session and arms the expiry clock. All failures come back as a LoginResult
// carrying a user-displayable message.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	token, user, err := m.auth.Login(ctx, email, password)
	if err != nil {
		msg := genericLoginMessage
		var apiErr *errs.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		m.mu.Lock()
		m.lastErr = msg
		m.mu.Unlock()
		m.log.Info("login rejected", zap.String("email", email), zap.Error(err))
		return LoginResult{OK: false, Message: msg}
	}

	if user.Role == "" {
		user.Role = model.DefaultRole
	}

	exp, err := TokenExpiry(token)
	if err != nil || TokenExpired(token) {
		// The upstream handed us a token we cannot schedule a logout for.
		// Accepting it would strand the session without an expiry.
		m.mu.Lock()
		m.lastErr = genericLoginMessage
		m.mu.Unlock()
		m.log.Warn("login returned unusable token", zap.String("email", email), zap.Error(err))
		return LoginResult{OK: false, Message: genericLoginMessage}
	}

	if err := m.store.Save(ctx, token, user); err != nil {
		m.mu.Lock()
		m.lastErr = genericLoginMessage
		m.mu.Unlock()
		m.log.Error("persist session", zap.Error(err))
		return LoginResult{OK: false, Message: genericLoginMessage}
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.token = token
	m.user = &user
	m.lastErr = ""
	m.mu.Unlock()

	if m.onAuth != nil {
		m.onAuth()
	}
	m.clock.Schedule(exp, m.expire)
	m.log.Info("login succeeded",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
		zap.Time("expires", exp))
	return LoginResult{OK: true}
}

// Logout cancels the clock, clears the persisted record and the in-memory
// state. Idempotent: a second call observes the same end state.
func (m *Manager) Logout(ctx context.Context) {
	m.clock.Cancel()
	_ = m.store.Clear(ctx)

	m.mu.Lock()
	ended := m.state == StateAuthenticated
	m.state = StateAnonymous
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if ended && m.onEnd != nil {
		m.onEnd()
	}
}

// expire is the clock callback; it has exactly the effect of Logout.
func (m *Manager) expire() {
	m.log.Info("session expired, logging out")
	m.Logout(context.Background())
}

// User returns a copy of the authenticated profile, or nil.
func (m *Manager) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the last login failure message, if any.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Store exposes the session's persistent store so outbound requests can be
// scoped to it.
func (m *Manager) Store() Store {
	return m.store
}

// TimerArmed reports whether an automatic logout is pending.
func (m *Manager) TimerArmed() bool {
	return m.clock.Armed()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	m.state = StateAnonymous
	m.token = ""
	m.user = nil
	m.mu.Unlock()
}
