package middleware

import (
	"context"
	"go-blog-app/internal/auth"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey = contextKey("identity")

// GetIdentity retrieves the caller's identity from the request context.
func GetIdentity(ctx context.Context) auth.Identity {
	if id, ok := ctx.Value(identityContextKey).(auth.Identity); ok && id != nil {
		return id
	}
	// Return an anonymous identity if none was set.
	return auth.Anonymous{}
}

// SetIdentity adds the caller's identity to the request context.
func SetIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
