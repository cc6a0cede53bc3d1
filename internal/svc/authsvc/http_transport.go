package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	context_ "github.com/mkrupp/fishpizzaria/internal/infra/context"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
	http_ "github.com/mkrupp/fishpizzaria/internal/infra/transport/http"
)

const maxRequestBodySize = 1 << 16

// ErrBadRequestBody is returned when a request body is not valid JSON.
var ErrBadRequestBody = errors.New("bad request body")

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// HTTPTransport serves the JSON API used by the web front.
type HTTPTransport struct {
	authSvc   *AuthService
	validator *RequestValidator
	log       logging.Logger
	cfg       HTTPTransportConfig
	mux       *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport with the following routes:
// - POST /register: create an account
// - POST /login: exchange credentials for a session token (rate limited per IP)
// - GET /profile: return the account of the bearer token.
func NewHTTPTransport(
	authSvc *AuthService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc:   authSvc,
		validator: NewRequestValidator(),
		log:       logging.GetLogger("svc.authsvc.http_transport"),
		cfg:       cfg,
		mux:       http.NewServeMux(),
	}

	limiter := http_.NewRateLimiter(authSvc.Config.LoginRate, authSvc.Config.LoginBurst)

	ht.mux.HandleFunc("POST /register", ht.HandleRegister)
	ht.mux.Handle("POST /login", http_.RateLimitingMiddleware(http.HandlerFunc(ht.HandleLogin), limiter, ht.log))
	ht.mux.Handle("GET /profile", http_.AuthorizingMiddleware(http.HandlerFunc(ht.HandleProfile), authSvc, ht.log))

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleRegister processes account registration requests.
// Expects a JSON body: {"name", "email", "password"}.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var reg domain.Registration
	if err := ht.decode(w, r, &reg); err != nil {
		return err
	}

	log = log.With(logging.Group("user", "email", reg.Email))

	created, err := ht.authSvc.RegisterUser(r.Context(), reg)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			writeError(w, http.StatusConflict)
		} else {
			writeError(w, http.StatusInternalServerError)
		}

		return fmt.Errorf("register user: %w", err)
	}

	return writeJSON(w, http.StatusCreated, created)
}

// HandleLogin processes login requests.
// Expects a JSON body: {"email", "password"}.
// Returns {"id", "name", "token"} on success.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var creds domain.Credentials
	if err := ht.decode(w, r, &creds); err != nil {
		return err
	}

	log = log.With(logging.Group("user", "email", creds.Email))

	resp, err := ht.authSvc.Login(r.Context(), creds)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized)
		} else {
			writeError(w, http.StatusInternalServerError)
		}

		return fmt.Errorf("login user: %w", err)
	}

	return writeJSON(w, http.StatusOK, resp)
}

// HandleProfile returns the account of the authenticated user.
// Must be mounted behind AuthorizingMiddleware.
func (ht *HTTPTransport) HandleProfile(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleProfile(w, r)
}

func (ht *HTTPTransport) handleProfile(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "get profile failed", "error", err)
		}
	}(r.Context())

	userID, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized)

		return domain.ErrUnauthorized
	}

	profile, err := ht.authSvc.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound)
		} else {
			writeError(w, http.StatusInternalServerError)
		}

		return fmt.Errorf("profile: %w", err)
	}

	return writeJSON(w, http.StatusOK, profile)
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself.
func (ht *HTTPTransport) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))

	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest)

		return errors.Join(ErrBadRequestBody, err)
	}

	if err := ht.validator.Validate(v); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			_ = writeJSON(w, http.StatusBadRequest, validationErr)
		} else {
			writeError(w, http.StatusInternalServerError)
		}

		return err
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func writeError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}
