package http

import (
	"context"
	"net/http"
	"strings"

	context_ "github.com/mkrupp/fishpizzaria/internal/infra/context"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
)

// Authorizer resolves a bearer token to the user ID it was issued for.
type Authorizer interface {
	// Authorize returns the user ID for token, whether the token is valid,
	// and any error encountered during validation.
	Authorize(ctx context.Context, token string) (string, bool, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// AuthorizingMiddleware creates middleware that validates bearer tokens.
// Requests without a valid token in the Authorization header are rejected.
// On successful validation, the user ID is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authorizer Authorizer,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r.Header.Get("Authorization"))
		if !ok {
			log.WarnContext(r.Context(), "no bearer token provided")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		}

		userID, ok, err := authorizer.Authorize(r.Context(), token)
		if err != nil {
			log.ErrorContext(r.Context(), "validate token failed", "error", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		} else if !ok {
			log.WarnContext(r.Context(), "invalid token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUserID(r.Context(), userID)))
	})
}
