package websvc

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/infra/apiclient"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
	"github.com/mkrupp/fishpizzaria/internal/svc/authsvc/authclient"
)

const (
	// DefaultSessionCookie is used when SessionConfig.SessionCookie is empty.
	DefaultSessionCookie = "fishpizzaria.sid"

	sessionSweepInterval = time.Minute
)

// AuthClientFactory creates the auth client a session logs in with.
type AuthClientFactory func(api *apiclient.Client) authclient.AuthClient

type storedSession struct {
	session  *AuthSession
	lastSeen time.Time
}

// SessionStore keeps one AuthSession per browser, keyed by the session cookie.
// Every session gets its own AuthState and its own clone of the API client,
// so a bearer token set by one browser is never sent on behalf of another.
type SessionStore struct {
	// Now is the clock used for idle expiry
	Now func() time.Time

	mu        sync.Mutex
	sessions  map[string]*storedSession
	lastSweep time.Time

	api     *apiclient.Client
	newAuth AuthClientFactory
	cfg     SessionConfig
	log     logging.Logger
}

// NewSessionStore creates a SessionStore. Sessions clone api and log in
// through the client newAuth builds on that clone.
func NewSessionStore(api *apiclient.Client, newAuth AuthClientFactory, cfg SessionConfig) *SessionStore {
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = DefaultSessionCookie
	}

	return &SessionStore{
		Now:      time.Now,
		sessions: make(map[string]*storedSession),
		api:      api,
		newAuth:  newAuth,
		cfg:      cfg,
		log:      logging.GetLogger("svc.websvc.session_store"),
	}
}

// Config returns the session configuration, with defaults applied.
func (st *SessionStore) Config() SessionConfig {
	return st.cfg
}

// Lookup returns the session named by the session cookie of r.
func (st *SessionStore) Lookup(r *http.Request) (*AuthSession, bool) {
	id, ok := CookieValue(r, st.cfg.SessionCookie)
	if !ok {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.Now()
	st.sweep(now)

	stored, ok := st.sessions[id]
	if !ok || st.expired(stored, now) {
		return nil, false
	}

	stored.lastSeen = now

	return stored.session, true
}

// Start returns the session of r, creating one and writing its cookie to
// cookies when r has none.
func (st *SessionStore) Start(r *http.Request, cookies CookieStore) (*AuthSession, error) {
	if session, ok := st.Lookup(r); ok {
		return session, nil
	}

	session := st.newSession()

	if err := cookies.SetCookie(st.cfg.SessionCookie, session.ID, CookieOptions{
		MaxAge: int(st.cfg.IdleTimeout / time.Second),
		Path:   tokenCookiePath,
	}); err != nil {
		return nil, fmt.Errorf("set session cookie: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions[session.ID] = &storedSession{session: session, lastSeen: st.Now()}

	return session, nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

func (st *SessionStore) newSession() *AuthSession {
	api := st.api.Clone()
	state := NewAuthState()

	session := NewAuthSession(state, st.newAuth(api), api, st.cfg)
	session.ID = uuid.NewString() // random v4, the cookie is a bearer credential

	state.Subscribe(func(user domain.User, authenticated bool) {
		st.log.Info("auth state changed",
			"authenticated", authenticated,
			logging.Group("user", "id", user.ID, "email", user.Email))
	})

	return session
}

func (st *SessionStore) expired(stored *storedSession, now time.Time) bool {
	return st.cfg.IdleTimeout > 0 && now.Sub(stored.lastSeen) > st.cfg.IdleTimeout
}

// sweep drops expired sessions at most once per sessionSweepInterval.
// Callers hold st.mu.
func (st *SessionStore) sweep(now time.Time) {
	if st.cfg.IdleTimeout <= 0 || now.Sub(st.lastSweep) < sessionSweepInterval {
		return
	}

	st.lastSweep = now

	for id, stored := range st.sessions {
		if st.expired(stored, now) {
			delete(st.sessions, id)
		}
	}
}
