package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/middleware"
	"github.com/pulse/backend/internal/models"
)

// maxImageBytes bounds profile image uploads.
const maxImageBytes = 10 << 20

// maxBatchIDs bounds a single batch lookup.
const maxBatchIDs = 100

// UserHandler serves account and relationship endpoints.
type UserHandler struct {
	Accounts      AccountService
	Relationships RelationshipService
	Sessions      SessionManager
}

// ToggleFollow handles POST /api/v1/users/{id}/follow.
func (h UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	state, err := h.Relationships.ToggleFollow(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, followResponse{IsFollowing: state.IsFollowing, FollowerCount: state.FollowerCount})
}

// FollowStatus handles GET /api/v1/users/{id}/follow.
func (h UserHandler) FollowStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := h.Relationships.FollowStatus(ctx, optionalIdentity(r), r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, followResponse{IsFollowing: state.IsFollowing, FollowerCount: state.FollowerCount})
}

// ToggleBlock handles POST /api/v1/users/block.
func (h UserHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	var req blockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	blocked, err := h.Relationships.ToggleBlock(ctx, actor, req.UserIDToBlock)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	message := "User unblocked"
	if blocked {
		message = "User blocked"
	}
	respondJSON(ctx, w, http.StatusOK, blockResponse{Message: message, IsBlocked: blocked})
}

// BlockStatus handles GET /api/v1/users/block?userId=.
func (h UserHandler) BlockStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	blocked, err := h.Relationships.IsBlocked(ctx, actor, r.URL.Query().Get("userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, blockResponse{IsBlocked: blocked})
}

// RemoveFollower handles DELETE /api/v1/users/me/followers/{id}.
func (h UserHandler) RemoveFollower(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	count, err := h.Relationships.RemoveFollower(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]int{"followerCount": count})
}

// Batch handles POST /api/v1/users/batch.
func (h UserHandler) Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if len(req.IDs) > maxBatchIDs {
		respondError(ctx, w, apperrors.New(apperrors.KindInvalidInput, "too many ids requested"))
		return
	}

	users, err := h.Accounts.Lookup(ctx, req.IDs)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"users": newSummaryResponses(users)})
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	user, err := h.Accounts.Current(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": newUserResponse(user)})
}

// UpdateMe handles PUT /api/v1/users/me.
func (h UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Accounts.UpdateProfile(ctx, actor, models.ProfileChanges{
		Name:     req.Name,
		Username: req.Username,
		Image:    req.Image,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": newUserResponse(user)})
}

// UploadImage handles POST /api/v1/users/me/image with a multipart "image" field.
func (h UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(ctx, w, apperrors.New(apperrors.KindInvalidInput, "image is too large"))
			return
		}
		respondError(ctx, w, apperrors.Wrap(apperrors.KindInvalidInput, "image file is required", err))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		respondError(ctx, w, apperrors.New(apperrors.KindInvalidInput, "file must be an image"))
		return
	}

	user, err := h.Accounts.UpdateImage(ctx, actor, header.Filename, file)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"user": newUserResponse(user)})
}

// DeleteMe handles DELETE /api/v1/users/me.
func (h UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	if err := h.Accounts.Delete(ctx, actor); err != nil {
		respondError(ctx, w, err)
		return
	}
	if h.Sessions != nil {
		if err := h.Sessions.Logout(ctx, middleware.BearerToken(r), ""); err != nil {
			logging.FromContext(ctx).Warn("revoke access token of deleted account", "user_id", actor.UserID, "error", err)
		}
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "Account deleted successfully"})
}

type followResponse struct {
	IsFollowing   bool `json:"isFollowing"`
	FollowerCount int  `json:"followerCount"`
}

type blockRequest struct {
	UserIDToBlock string `json:"userIdToBlock"`
}

type blockResponse struct {
	Message   string `json:"message,omitempty"`
	IsBlocked bool   `json:"isBlocked"`
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Image    *string `json:"image"`
}
