package websvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
	http_ "github.com/mkrupp/fishpizzaria/internal/infra/transport/http"
)

const maxRequestBodySize = 1 << 16

// ErrBadRequestBody is returned when a sign-in request carries no readable credentials.
var ErrBadRequestBody = errors.New("bad request body")

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// SessionView is the JSON form of the AuthState.
type SessionView struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *domain.User `json:"user"`
}

// HTTPTransport serves the pages of the web front. Each request acts on the
// AuthSession of its browser.
type HTTPTransport struct {
	sessions *SessionStore
	pages    *Pages
	log     logging.Logger
	cfg     HTTPTransportConfig
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport with the following routes:
// - GET /: sign-in form
// - POST /signin: sign in with form or JSON credentials
// - GET|POST /signout: sign out
// - GET /dashboard: dashboard view
// - GET /session: the browser's AuthState as JSON
// - GET /account: the signed-in account, fetched from the API with the session token.
func NewHTTPTransport(sessions *SessionStore, pages *Pages, cfg HTTPTransportConfig) *HTTPTransport {
	ht := &HTTPTransport{
		sessions: sessions,
		pages:    pages,
		log:      logging.GetLogger("svc.websvc.http_transport"),
		cfg:      cfg,
		mux:      http.NewServeMux(),
	}

	ht.mux.HandleFunc("GET /{$}", ht.HandleSignInPage)
	ht.mux.HandleFunc("POST /signin", ht.HandleSignIn)
	ht.mux.HandleFunc("GET /signout", ht.HandleSignOut)
	ht.mux.HandleFunc("POST /signout", ht.HandleSignOut)
	ht.mux.HandleFunc("GET /dashboard", ht.HandleDashboard)
	ht.mux.HandleFunc("GET /session", ht.HandleSession)
	ht.mux.HandleFunc("GET /account", ht.HandleAccount)

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleSignInPage renders the sign-in form.
func (ht *HTTPTransport) HandleSignInPage(w http.ResponseWriter, r *http.Request) {
	_ = ht.renderSignIn(w, r, "")
}

// HandleSignIn signs the user in. Credentials are read from a JSON body
// {"email", "password"} or from form fields of the same names.
// Success answers with a redirect to the dashboard; failure re-renders the
// sign-in form.
func (ht *HTTPTransport) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleSignIn(w, r)
}

func (ht *HTTPTransport) handleSignIn(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "sign in request failed", "error", err)
		}
	}(r.Context())

	creds, err := readCredentials(w, r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return err
	}

	cookies := NewResponseCookieStore(w, ht.sessions.Config().SecureCookies)

	session, err := ht.sessions.Start(r, cookies)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("start session: %w", err)
	}

	if err := session.SignIn(r.Context(), creds, cookies, NewRedirectNavigator(w, r)); err != nil {
		if renderErr := ht.renderSignIn(w, r, creds.Email); renderErr != nil {
			return errors.Join(err, renderErr)
		}

		return err
	}

	return nil
}

// HandleSignOut signs the user out and redirects home. A browser without a
// session still gets its token cookie removed.
// Responds 500 without a redirect if the cookie cannot be removed.
func (ht *HTTPTransport) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	var (
		cookies = NewResponseCookieStore(w, ht.sessions.Config().SecureCookies)
		nav     = NewRedirectNavigator(w, r)
		err     error
	)

	if session, ok := ht.sessions.Lookup(r); ok {
		err = session.SignOut(r.Context(), cookies, nav)
	} else {
		err = SignOut(r.Context(), ht.sessions.Config().SignOutCookie, cookies, nav)
	}

	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// HandleDashboard renders the dashboard view.
func (ht *HTTPTransport) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := ht.pages.Dashboard(w); err != nil {
		ht.log.ErrorContext(r.Context(), "render dashboard failed", "error", err)
	}
}

// HandleSession returns {"isAuthenticated", "user"} for the AuthState of
// the requesting browser. Browsers without a session are not authenticated.
func (ht *HTTPTransport) HandleSession(w http.ResponseWriter, r *http.Request) {
	var view SessionView

	if session, ok := ht.sessions.Lookup(r); ok {
		if user, ok := session.State.User(); ok {
			view = SessionView{IsAuthenticated: true, User: &user}
		}
	}

	ht.writeJSON(w, r, http.StatusOK, view)
}

// HandleAccount returns the account of the signed-in user as {"id", "name", "email"}.
// The API is called with the bearer token installed at sign-in.
// Responds 401 when the browser is not signed in or the API rejects the
// token, 502 on any other API failure.
func (ht *HTTPTransport) HandleAccount(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAccount(w, r)
}

func (ht *HTTPTransport) handleAccount(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "get account failed", "error", err)
		}
	}(r.Context())

	session, ok := ht.sessions.Lookup(r)
	if !ok || !session.State.IsAuthenticated() {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return domain.ErrNoAuthToken
	}

	account, err := session.Auth.Profile(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAuthToken) || errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		} else {
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		}

		return fmt.Errorf("profile: %w", err)
	}

	ht.writeJSON(w, r, http.StatusOK, account)

	return nil
}

func (ht *HTTPTransport) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ht.log.ErrorContext(r.Context(), "encode response failed", "error", err)
	}
}

func (ht *HTTPTransport) renderSignIn(w http.ResponseWriter, r *http.Request, email string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := ht.pages.SignIn(w, email); err != nil {
		ht.log.ErrorContext(r.Context(), "render sign in failed", "error", err)

		return fmt.Errorf("render sign in: %w", err)
	}

	return nil
}

func readCredentials(w http.ResponseWriter, r *http.Request) (domain.Credentials, error) {
	var creds domain.Credentials

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return domain.Credentials{}, errors.Join(ErrBadRequestBody, err)
		}

		return creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return domain.Credentials{}, errors.Join(ErrBadRequestBody, err)
	}

	creds.Email = r.PostForm.Get("email")
	creds.Password = r.PostForm.Get("password")

	return creds, nil
}
