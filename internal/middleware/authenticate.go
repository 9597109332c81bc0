package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
)

// IdentityResolver maps an access token to the caller it was issued to.
type IdentityResolver interface {
	Resolve(ctx context.Context, accessToken string) (models.Identity, error)
}

// Authenticate attaches the caller's identity to the request context when a
// valid bearer token is present. Requests without one continue anonymously.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, err := resolver.Resolve(ctx, token)
			if err != nil {
				logging.FromContext(ctx).Debug("bearer token rejected", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			logger := logging.FromContext(ctx).With(slog.String("user_id", identity.UserID))
			ctx = logging.WithLogger(auth.WithIdentity(ctx, identity), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests that Authenticate did not attach an identity to.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
