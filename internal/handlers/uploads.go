package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/storage"
)

// uploadKinds maps the requested asset kind to its key prefix.
var uploadKinds = map[string]string{
	"video":     "videos",
	"thumbnail": "thumbnails",
	"image":     "avatars",
}

// UploadHandler signs direct uploads to the object store.
type UploadHandler struct {
	Uploads UploadAuthorizer
}

// Authorize handles GET /api/v1/uploads/auth?kind=&filename=&contentType=.
func (h UploadHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	if h.Uploads == nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "uploads are not configured"})
		return
	}

	query := r.URL.Query()
	kind := strings.ToLower(strings.TrimSpace(query.Get("kind")))
	if kind == "" {
		kind = "video"
	}
	prefix, ok := uploadKinds[kind]
	if !ok {
		respondError(ctx, w, apperrors.New(apperrors.KindInvalidInput, "kind must be one of video, thumbnail or image"))
		return
	}

	key := storage.ObjectKey(prefix, actor.UserID, query.Get("filename"))
	signed, err := h.Uploads.PresignUpload(ctx, key, strings.TrimSpace(query.Get("contentType")))
	if err != nil {
		respondError(ctx, w, apperrors.Internal("presign upload", err))
		return
	}

	headers := make(map[string]string, len(signed.Headers))
	for name := range signed.Headers {
		headers[name] = signed.Headers.Get(name)
	}
	respondJSON(ctx, w, http.StatusOK, uploadResponse{
		URL:       signed.URL,
		Method:    signed.Method,
		Headers:   headers,
		Key:       signed.Key,
		PublicURL: signed.PublicURL,
		ExpiresAt: signed.ExpiresAt,
	})
}

type uploadResponse struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	PublicURL string            `json:"publicUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}
