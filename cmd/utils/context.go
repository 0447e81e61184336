package utils

import (
	"context"
	"errors"
)

type contextKey string

const UserIDKey contextKey = "userID"


// GetUserIDFromContext returns the authenticated user id stored by the
// auth middleware.
func GetUserIDFromContext(ctx context.Context) (uint, error) {
    userID, ok := ctx.Value(UserIDKey).(uint)
    if !ok {
        return 0, errors.New("user ID not found in context")
    }
    return userID, nil
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uint) context.Context {
    return context.WithValue(ctx, UserIDKey, userID)
}
