package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const usernameKey contextKey = "username"

var ErrNoUser = errors.New("no authenticated user")

// CurrentUsername retrieves the logged-in username from the context.
// Returns ErrNoUser when the request is unauthenticated.
func CurrentUsername(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok || username == "" {
		log.Trace("username not found in context")
		return "", ErrNoUser
	}
	return username, nil
}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}
