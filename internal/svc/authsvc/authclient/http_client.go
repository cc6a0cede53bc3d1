package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/infra/apiclient"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
)

const (
	LoginPath   = "/login"
	ProfilePath = "/profile"
)

// HTTPClient implements AuthClient on top of the shared API client.
type HTTPClient struct {
	api *apiclient.Client
	log logging.Logger
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient sending requests through api.
func NewHTTPClient(api *apiclient.Client) *HTTPClient {
	return &HTTPClient{
		api: api,
		log: logging.GetLogger("svc.authsvc.authclient"),
	}
}

// Login implements AuthClient.Login with a POST to LoginPath.
// The response must carry an id and a token.
func (hc *HTTPClient) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResponse, error) {
	var resp domain.LoginResponse

	if err := hc.api.PostJSON(ctx, LoginPath, creds, &resp); err != nil {
		return domain.LoginResponse{}, fmt.Errorf("post login: %w", classify(err, domain.ErrInvalidCredentials))
	}

	if err := resp.Validate(); err != nil {
		return domain.LoginResponse{}, err
	}

	hc.log.DebugContext(ctx, "login accepted", logging.Group("user", "id", resp.ID))

	return resp, nil
}

// Profile implements AuthClient.Profile with a GET to ProfilePath.
func (hc *HTTPClient) Profile(ctx context.Context) (domain.User, error) {
	var user domain.User

	if err := hc.api.GetJSON(ctx, ProfilePath, &user); err != nil {
		return domain.User{}, fmt.Errorf("get profile: %w", classify(err, domain.ErrInvalidAuthToken))
	}

	return user, nil
}

// classify tags API status errors with a domain error; a 401 is tagged with unauthorized.
func classify(err, unauthorized error) error {
	var statusErr *apiclient.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	switch statusErr.StatusCode {
	case http.StatusUnauthorized:
		return errors.Join(unauthorized, err)
	case http.StatusForbidden:
		return errors.Join(domain.ErrUnauthorized, err)
	default:
		return err
	}
}
