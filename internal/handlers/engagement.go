package handlers

import (
	"net/http"
	"strings"
)

// EngagementHandler serves likes and comments on a video.
type EngagementHandler struct {
	Engagement EngagementService
}

// ToggleLike handles POST /api/v1/videos/{id}/like.
func (h EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	state, err := h.Engagement.ToggleLike(ctx, actor, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeResponse{Likes: state.Likes, IsLiked: state.IsLiked})
}

// LikeStatus handles GET /api/v1/videos/{id}/like.
func (h EngagementHandler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := h.Engagement.LikeStatus(ctx, optionalIdentity(r), r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeResponse{Likes: state.Likes, IsLiked: state.IsLiked})
}

// AddComment handles POST /api/v1/videos/{id}/comments.
func (h EngagementHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	comment, total, err := h.Engagement.AddComment(ctx, actor, r.PathValue("id"), req.Text)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, map[string]any{
		"comment":       commentResponse(comment),
		"totalComments": total,
	})
}

// ListComments handles GET /api/v1/videos/{id}/comments.
func (h EngagementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comments, err := h.Engagement.ListComments(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"comments":      newCommentResponses(comments),
		"totalComments": len(comments),
	})
}

// DeleteComment handles DELETE /api/v1/videos/{id}/comments. The comment id is
// read from the body, or the commentId query parameter when there is no body.
func (h EngagementHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	var req deleteCommentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
	}
	if strings.TrimSpace(req.CommentID) == "" {
		req.CommentID = r.URL.Query().Get("commentId")
	}

	if err := h.Engagement.DeleteComment(ctx, actor, r.PathValue("id"), req.CommentID); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "Comment deleted"})
}

type likeResponse struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type deleteCommentRequest struct {
	CommentID string `json:"commentId"`
}
