package websvc_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/infra/apiclient"
	"github.com/mkrupp/fishpizzaria/internal/svc/websvc"
)

const testCookie = "fishpizzaria.token"

func setupSession(t *testing.T, auth *fakeAuthClient) (*websvc.AuthSession, *apiclient.Client) {
	t.Helper()

	api := apiclient.New(apiclient.Config{BaseURL: "http://api.invalid"}, http.DefaultClient)
	session := websvc.NewAuthSession(websvc.NewAuthState(), auth, api, websvc.SessionConfig{
		TokenCookie:   testCookie,
		SignOutCookie: testCookie,
	})

	return session, api
}

func TestAuthSession_SignIn(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthClient{resp: domain.LoginResponse{ID: "1", Name: "Ana", Token: "tok123"}}
	session, api := setupSession(t, auth)
	cookies := newFakeCookies()
	nav := &fakeNavigator{}

	creds := domain.Credentials{Email: "a@b.com", Password: "x"}
	require.NoError(t, session.SignIn(context.Background(), creds, cookies, nav))

	assert.Equal(t, []domain.Credentials{creds}, auth.calls)

	user, ok := session.State.User()
	require.True(t, ok)
	assert.Equal(t, domain.User{ID: "1", Name: "Ana", Email: "a@b.com"}, user)
	assert.True(t, session.State.IsAuthenticated())

	assert.Equal(t, map[string]setCookieCall{
		testCookie: {Value: "tok123", Opts: websvc.CookieOptions{MaxAge: 2592000, Path: "/"}},
	}, cookies.set)

	assert.Equal(t, "Bearer tok123", api.DefaultHeader(apiclient.AuthorizationHeader))
	assert.Equal(t, []string{"/dashboard"}, nav.Paths())
}

func TestAuthSession_SignInKeepsInputEmail(t *testing.T) {
	t.Parallel()

	// the response carries no email; the one typed in is stored as-is
	auth := &fakeAuthClient{resp: domain.LoginResponse{ID: "7", Name: "Bia", Token: "t"}}
	session, _ := setupSession(t, auth)

	require.NoError(t, session.SignIn(context.Background(),
		domain.Credentials{Email: "Bia@Example.com"}, newFakeCookies(), &fakeNavigator{}))

	user, _ := session.State.User()
	assert.Equal(t, "Bia@Example.com", user.Email)
}

func TestAuthSession_SignInFailure(t *testing.T) {
	t.Parallel()

	statusErr := &apiclient.StatusError{Method: http.MethodPost, URL: "/login", StatusCode: http.StatusUnauthorized}

	tests := []struct {
		name      string
		loginErr  error
		cookieErr error
		wantErr   error
	}{
		{
			name:     "rejected credentials",
			loginErr: errors.Join(domain.ErrInvalidCredentials, statusErr),
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "server error",
			loginErr: &apiclient.StatusError{StatusCode: http.StatusInternalServerError},
			wantErr:  apiclient.ErrUnexpectedStatus,
		},
		{
			name:     "malformed response",
			loginErr: domain.ErrMalformedLoginResponse,
			wantErr:  domain.ErrMalformedLoginResponse,
		},
		{
			name:     "transport error",
			loginErr: fmt.Errorf("dial: %w", context.DeadlineExceeded),
			wantErr:  context.DeadlineExceeded,
		},
		{
			name:      "cookie not written",
			cookieErr: websvc.ErrInvalidCookie,
			wantErr:   websvc.ErrInvalidCookie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			auth := &fakeAuthClient{
				resp: domain.LoginResponse{ID: "1", Name: "Ana", Token: "tok123"},
				err:  tt.loginErr,
			}
			session, api := setupSession(t, auth)
			cookies := newFakeCookies()
			cookies.setErr = tt.cookieErr
			nav := &fakeNavigator{}

			err := session.SignIn(context.Background(), domain.Credentials{Email: "a@b.com", Password: "wrong"}, cookies, nav)
			require.Error(t, err)
			assert.ErrorIs(t, err, websvc.ErrSignInFailed)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.False(t, session.State.IsAuthenticated())
			assert.Empty(t, cookies.set)
			assert.Empty(t, api.DefaultHeader(apiclient.AuthorizationHeader))
			assert.Empty(t, nav.Paths())
			assert.Len(t, auth.calls, 1, "no retry")
		})
	}
}

func TestAuthSession_SignInNavigationFailure(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthClient{resp: domain.LoginResponse{ID: "1", Name: "Ana", Token: "tok123"}}
	session, api := setupSession(t, auth)
	errNavigate := errors.New("navigation aborted")

	err := session.SignIn(context.Background(), domain.Credentials{Email: "a@b.com"},
		newFakeCookies(), &fakeNavigator{err: errNavigate})
	require.ErrorIs(t, err, websvc.ErrSignInFailed)
	assert.ErrorIs(t, err, errNavigate)

	// navigation runs last: the session is already established
	assert.True(t, session.State.IsAuthenticated())
	assert.Equal(t, "Bearer tok123", api.DefaultHeader(apiclient.AuthorizationHeader))
}

func TestAuthSession_SignInFailureKeepsPreviousUser(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthClient{err: domain.ErrInvalidCredentials}
	session, _ := setupSession(t, auth)

	ana := domain.User{ID: "1", Name: "Ana", Email: "a@b.com"}
	session.State.Insert(ana)

	err := session.SignIn(context.Background(), domain.Credentials{Email: "x@y.com"}, newFakeCookies(), &fakeNavigator{})
	require.ErrorIs(t, err, websvc.ErrSignInFailed)

	user, ok := session.State.User()
	require.True(t, ok)
	assert.Equal(t, ana, user)
}

func TestAuthSession_ConcurrentSignIn(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthClient{resp: domain.LoginResponse{ID: "1", Name: "Ana", Token: "tok123"}}
	session, api := setupSession(t, auth)

	emails := []string{"a@b.com", "c@d.com", "e@f.com", "g@h.com"}

	var wg sync.WaitGroup

	for _, email := range emails {
		wg.Add(1)

		go func() {
			defer wg.Done()
			assert.NoError(t, session.SignIn(context.Background(),
				domain.Credentials{Email: email}, newFakeCookies(), &fakeNavigator{}))
		}()
	}

	wg.Wait()

	// last writer wins: the held user is one of the attempts, never a mix
	user, ok := session.State.User()
	require.True(t, ok)
	assert.Contains(t, emails, user.Email)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "Bearer tok123", api.DefaultHeader(apiclient.AuthorizationHeader))
}

func TestAuthSession_SignOut(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthClient{resp: domain.LoginResponse{ID: "1", Name: "Ana", Token: "tok123"}}
	session, _ := setupSession(t, auth)
	cookies := newFakeCookies()
	nav := &fakeNavigator{}

	require.NoError(t, session.SignIn(context.Background(), domain.Credentials{Email: "a@b.com"}, cookies, nav))
	require.NoError(t, session.SignOut(context.Background(), cookies, nav))

	assert.Equal(t, []string{testCookie}, cookies.destroyed)
	assert.Empty(t, cookies.set)
	assert.Equal(t, []string{"/dashboard", "/"}, nav.Paths())

	// sign-out leaves the in-memory user in place
	user, ok := session.State.User()
	require.True(t, ok)
	assert.Equal(t, "Ana", user.Name)
	assert.True(t, session.State.IsAuthenticated())
}

func TestAuthSession_SignOutCookieNameMismatch(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthClient{resp: domain.LoginResponse{ID: "1", Name: "Ana", Token: "tok123"}}
	api := apiclient.New(apiclient.Config{}, http.DefaultClient)
	cfg := websvc.SessionConfig{TokenCookie: "written", SignOutCookie: "removed"}
	session := websvc.NewAuthSession(websvc.NewAuthState(), auth, api, cfg)

	assert.True(t, cfg.CookieNamesDiffer())

	cookies := newFakeCookies()
	nav := &fakeNavigator{}

	require.NoError(t, session.SignIn(context.Background(), domain.Credentials{Email: "a@b.com"}, cookies, nav))
	require.NoError(t, session.SignOut(context.Background(), cookies, nav))

	assert.Equal(t, []string{"removed"}, cookies.destroyed)
	assert.Contains(t, cookies.set, "written", "token cookie survives sign-out")
}

func TestSignOut_Idempotent(t *testing.T) {
	t.Parallel()

	cookies := newFakeCookies()
	nav := &fakeNavigator{}

	require.NoError(t, websvc.SignOut(context.Background(), testCookie, cookies, nav))
	require.NoError(t, websvc.SignOut(context.Background(), testCookie, cookies, nav))

	assert.Equal(t, []string{"/", "/"}, nav.Paths())
}

func TestSignOut_Failure(t *testing.T) {
	t.Parallel()

	cookies := newFakeCookies()
	cookies.destroyErr = websvc.ErrInvalidCookie
	nav := &fakeNavigator{}

	err := websvc.SignOut(context.Background(), testCookie, cookies, nav)
	require.ErrorIs(t, err, websvc.ErrSignOutFailed)
	assert.ErrorIs(t, err, websvc.ErrInvalidCookie)
	assert.Empty(t, nav.Paths())
}

func TestSignOut_ResponseCookieStore(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/signout", nil)

	err := websvc.SignOut(context.Background(), testCookie,
		websvc.NewResponseCookieStore(rec, false), websvc.NewRedirectNavigator(rec, req))
	require.NoError(t, err)

	resp := rec.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSignOut_InvalidCookieName(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/signout", nil)

	err := websvc.SignOut(context.Background(), "",
		websvc.NewResponseCookieStore(rec, false), websvc.NewRedirectNavigator(rec, req))
	require.ErrorIs(t, err, websvc.ErrSignOutFailed)
	assert.ErrorIs(t, err, websvc.ErrInvalidCookie)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}
