package websvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/infra/apiclient"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
	"github.com/mkrupp/fishpizzaria/internal/svc/authsvc/authclient"
)

const (
	// HomePath is where the browser lands after signing out.
	HomePath = "/"

	// DashboardPath is where the browser lands after signing in.
	DashboardPath = "/dashboard"

	// TokenCookieMaxAge is the lifetime of the session token cookie in seconds (30 days).
	TokenCookieMaxAge = 60 * 60 * 24 * 30

	tokenCookiePath = "/"
)

var (
	// ErrSignInFailed wraps every error returned by SignIn.
	ErrSignInFailed = errors.New("sign in failed")
	// ErrSignOutFailed wraps every error returned by SignOut.
	ErrSignOutFailed = errors.New("sign out failed")
)

// SessionConfig names the session token cookie. The name written at sign-in
// and the name removed at sign-out are separate settings.
type SessionConfig struct {
	// TokenCookie is the cookie the session token is written to at sign-in
	TokenCookie string `env:"NEXT_PUBLIC_KEY_TOKEN" default:"fishpizzaria.token"`

	// SignOutCookie is the cookie destroyed at sign-out
	SignOutCookie string `env:"KEY_TOKEN" default:"fishpizzaria.token"`

	// SecureCookies restricts the token and session cookies to HTTPS
	SecureCookies bool `env:"SECURE_COOKIES" default:"false"`

	// SessionCookie is the cookie identifying a browser's AuthSession
	SessionCookie string `env:"SESSION_COOKIE" default:"fishpizzaria.sid"`

	// IdleTimeout drops sessions not seen for this long; zero keeps them
	// for the lifetime of the process
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"720h"`
}

// CookieNamesDiffer reports whether sign-out would remove a different cookie
// than the one written at sign-in.
func (c SessionConfig) CookieNamesDiffer() bool {
	return c.TokenCookie != c.SignOutCookie
}

// HeaderSetter sets a header sent with every later request of an API client.
type HeaderSetter interface {
	SetDefaultHeader(key, value string)
}

var _ HeaderSetter = (*apiclient.Client)(nil)

// AuthSession is the auth state of one browser: the signed-in user and the
// API client carrying that user's bearer token. It signs the browser in and out.
type AuthSession struct {
	// ID is the value of the browser's session cookie
	ID string

	State  *AuthState
	Auth   authclient.AuthClient
	API    HeaderSetter
	Config SessionConfig
	Log    logging.Logger
}

// NewAuthSession creates an AuthSession storing the signed-in user in state.
// Logins go through auth; the session token is installed as the bearer
// header of api.
func NewAuthSession(state *AuthState, auth authclient.AuthClient, api HeaderSetter, cfg SessionConfig) *AuthSession {
	return &AuthSession{
		State:  state,
		Auth:   auth,
		API:    api,
		Config: cfg,
		Log:    logging.GetLogger("svc.websvc.auth_session"),
	}
}

// SignIn exchanges creds for a session token. On success the token is
// written to the token cookie, the user is stored in the AuthState, the
// token becomes the bearer header of the API client and the browser is sent
// to DashboardPath.
//
// Every error returned wraps ErrSignInFailed. A failed login or token
// cookie leaves the session untouched. Navigation runs last, so when it
// fails the user is already stored and the bearer header already set.
func (s *AuthSession) SignIn(ctx context.Context, creds domain.Credentials, cookies CookieStore, nav Navigator) (err error) {
	log := s.Log.With(logging.Group("user", "email", creds.Email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "sign in failed", "error", err)
			err = errors.Join(ErrSignInFailed, err)
		} else {
			log.InfoContext(ctx, "signed in")
		}
	}()

	resp, err := s.Auth.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := cookies.SetCookie(s.Config.TokenCookie, resp.Token, CookieOptions{
		MaxAge: TokenCookieMaxAge,
		Path:   tokenCookiePath,
	}); err != nil {
		return fmt.Errorf("set token cookie: %w", err)
	}

	s.State.Insert(domain.User{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: creds.Email,
	})

	s.API.SetDefaultHeader(apiclient.AuthorizationHeader, "Bearer "+resp.Token)

	if err := nav.Navigate(ctx, DashboardPath); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	return nil
}

// SignOut removes the configured sign-out cookie and sends the browser home.
// The AuthState keeps its user.
func (s *AuthSession) SignOut(ctx context.Context, cookies CookieStore, nav Navigator) error {
	return SignOut(ctx, s.Config.SignOutCookie, cookies, nav)
}

// SignOut destroys cookieName and navigates to HomePath. It holds no state
// of its own. On failure navigation is skipped and the returned error wraps
// ErrSignOutFailed.
func SignOut(ctx context.Context, cookieName string, cookies CookieStore, nav Navigator) (err error) {
	defer func() {
		if err != nil {
			logging.GetLogger("svc.websvc.auth_session").ErrorContext(ctx, "sign out failed",
				"cookie", cookieName, "error", err)
			err = errors.Join(ErrSignOutFailed, err)
		}
	}()

	if err := cookies.DestroyCookie(cookieName, CookieOptions{Path: tokenCookiePath}); err != nil {
		return fmt.Errorf("destroy token cookie: %w", err)
	}

	if err := nav.Navigate(ctx, HomePath); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	return nil
}
