package authsvc

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/fishpizzaria/internal/domain"
)

// IssueToken signs claims as an RS256 JWT.
func IssueToken(claims domain.TokenClaims, signingKey *rsa.PrivateKey) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken validates a session token by:
// - Verifying the RS256 signature against publicKey
// - Requiring a subject and an expiry
// - Checking the expiry against now
// Returns the parsed claims if valid.
// Returns domain.ErrInvalidAuthToken for any validation failure.
func ValidateToken(
	_ context.Context,
	tokenString string,
	publicKey *rsa.PublicKey,
	now func() time.Time,
) (domain.TokenClaims, error) {
	var claims domain.TokenClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return domain.TokenClaims{}, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("parse token: %w", err))
	}

	if !token.Valid || claims.Subject == "" {
		return domain.TokenClaims{}, domain.ErrInvalidAuthToken
	}

	return claims, nil
}
