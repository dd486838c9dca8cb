package utils

import (
	"context"
	"time"
)

type contextKey string

const ContextUserIDKey contextKey = "userID"

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

// SessionData is the identity record the middleware resolves a session
// cookie into. Credential management itself lives in an external service;
// this core only consumes the resolved session.
type SessionData struct {
	UserID    string
	ExpiresAt time.Time
}
