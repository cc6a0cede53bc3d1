package domain

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token's signature is invalid or it has expired.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrUnauthorized is returned when the authenticated user lacks permission.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedLoginResponse is returned when a login response lacks required fields.
	ErrMalformedLoginResponse = errors.New("malformed login response")
)

// TokenClaims are the claims carried by a session token. The subject is the user ID.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Validate reports ErrMalformedLoginResponse if the token or user ID is missing.
func (r LoginResponse) Validate() error {
	if r.ID == "" || r.Token == "" {
		return ErrMalformedLoginResponse
	}

	return nil
}
