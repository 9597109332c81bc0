package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errInvalidBody = apperrors.New(apperrors.KindInvalidInput, "invalid request body")

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps err onto its status and a client-safe message. Internal
// causes are logged, never returned.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		logging.FromContext(ctx).Error("internal error", slog.Any("error", err))
	}
	respondJSON(ctx, w, apperrors.HTTPStatus(kind), map[string]string{"error": apperrors.MessageOf(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Wrap(apperrors.KindInvalidInput, "request body is required", err)
		}
		logging.FromContext(r.Context()).Warn("invalid request payload", "error", err)
		return errInvalidBody
	}
	return nil
}

// identity returns the authenticated caller. Routes registered behind
// RequireIdentity always have one.
func identity(r *http.Request) (models.Identity, bool) {
	return auth.IdentityFromContext(r.Context())
}

// optionalIdentity returns the caller or nil for anonymous requests.
func optionalIdentity(r *http.Request) *models.Identity {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
