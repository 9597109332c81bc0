package auth

import (
	"context"

	"github.com/pulse/backend/internal/models"
)

type ctxKey struct{}

// WithIdentity stores the resolved caller on the context.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

// IdentityFromContext returns the caller resolved for this request, if any.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	if ctx == nil {
		return models.Identity{}, false
	}
	identity, ok := ctx.Value(ctxKey{}).(models.Identity)
	if !ok || identity.UserID == "" {
		return models.Identity{}, false
	}
	return identity, true
}
