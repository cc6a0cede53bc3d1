package context

import (
	"context"
)

type contextKey string

const contextKeyUserID = contextKey("userID")

// UserIDFromContext extracts the authenticated user ID from the context.
// Returns the ID and true if present, or empty string and false if not present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(string)

	return userID, ok
}

// WithUserID creates a new context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}
