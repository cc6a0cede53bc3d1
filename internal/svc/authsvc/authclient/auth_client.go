package authclient

import (
	"context"

	"github.com/mkrupp/fishpizzaria/internal/domain"
)

// AuthClient talks to the API on behalf of the signed-in user.
type AuthClient interface {
	// Login exchanges credentials for a session token.
	// Returns domain.ErrInvalidCredentials if the API rejects them.
	Login(ctx context.Context, creds domain.Credentials) (domain.LoginResponse, error)

	// Profile returns the user the current default bearer token belongs to.
	Profile(ctx context.Context) (domain.User, error)
}
