package auth

import (
	"context"

	"github.com/rallypoint/rallypoint/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userContextKey is the context key for the resolved caller.
	userContextKey contextKey = "session_user"
)

// ContextWithUser adds the resolved caller to the context.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the resolved caller from the context.
// Returns nil for anonymous or unauthenticated calls; the deciding
// operation enforces whether that is acceptable.
func UserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// UserIDFromContext is a convenience function to get the caller's id.
// Returns empty string if the context is anonymous.
func UserIDFromContext(ctx context.Context) string {
	user := UserFromContext(ctx)
	if user == nil {
		return ""
	}
	return user.ID
}
