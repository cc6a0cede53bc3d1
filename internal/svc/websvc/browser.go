package websvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrInvalidCookie is returned when a cookie name or value cannot be sent to a browser.
var ErrInvalidCookie = errors.New("invalid cookie")

// CookieOptions are the attributes a cookie is written with.
type CookieOptions struct {
	// MaxAge in seconds; zero means a session cookie
	MaxAge int
	Path   string
}

// CookieStore reads and writes browser cookies.
type CookieStore interface {
	// SetCookie writes a cookie.
	SetCookie(name, value string, opts CookieOptions) error
	// DestroyCookie expires a cookie. Destroying an absent cookie is not an error.
	DestroyCookie(name string, opts CookieOptions) error
}

// Navigator moves the browser to another location.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// ResponseCookieStore writes cookies as Set-Cookie headers on an HTTP response.
type ResponseCookieStore struct {
	w      http.ResponseWriter
	secure bool
}

var _ CookieStore = (*ResponseCookieStore)(nil)

// NewResponseCookieStore creates a cookie store for w. Secure marks cookies
// as HTTPS-only.
func NewResponseCookieStore(w http.ResponseWriter, secure bool) *ResponseCookieStore {
	return &ResponseCookieStore{w: w, secure: secure}
}

// SetCookie implements CookieStore.SetCookie. The value is percent-encoded
// so any string can be stored; read it back with CookieValue.
func (cs *ResponseCookieStore) SetCookie(name, value string, opts CookieOptions) error {
	return cs.write(&http.Cookie{
		Name:     name,
		Value:    url.PathEscape(value),
		Path:     opts.Path,
		MaxAge:   opts.MaxAge,
		Secure:   cs.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// DestroyCookie implements CookieStore.DestroyCookie.
func (cs *ResponseCookieStore) DestroyCookie(name string, opts CookieOptions) error {
	return cs.write(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   -1,
		Secure:   cs.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cs *ResponseCookieStore) write(cookie *http.Cookie) error {
	if err := cookie.Valid(); err != nil {
		return errors.Join(ErrInvalidCookie, fmt.Errorf("cookie %q: %w", cookie.Name, err))
	}

	http.SetCookie(cs.w, cookie)

	return nil
}

// CookieValue returns the decoded value of the request cookie name.
func CookieValue(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}

	value, err := url.PathUnescape(cookie.Value)
	if err != nil {
		return "", false
	}

	return value, true
}

// RedirectNavigator navigates by answering the request with 303 See Other.
type RedirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

var _ Navigator = (*RedirectNavigator)(nil)

// NewRedirectNavigator creates a navigator answering r through w.
func NewRedirectNavigator(w http.ResponseWriter, r *http.Request) *RedirectNavigator {
	return &RedirectNavigator{w: w, r: r}
}

// Navigate implements Navigator.Navigate.
func (n *RedirectNavigator) Navigate(_ context.Context, path string) error {
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)

	return nil
}
