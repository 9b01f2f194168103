package middleware

import (
	"context"

	"github.com/alexriley/storefront-sync/pkg/auth"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the caller identity seeded by OptionalAuth.
// Requests that carried no credentials yield the zero (anonymous) identity.
func IdentityFromContext(ctx context.Context) auth.Identity {
	if ctx == nil {
		return auth.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(auth.Identity); ok {
		return v
	}
	return auth.Identity{}
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}
