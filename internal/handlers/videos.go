package handlers

import (
	"net/http"

	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/videos"
)

// VideoHandler serves the video catalog.
type VideoHandler struct {
	Videos VideoCatalog
}

// Feed handles GET /api/v1/videos.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	feed, err := h.Videos.Feed(ctx, optionalIdentity(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, newVideoResponses(feed))
}

// Create handles POST /api/v1/videos.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	var req createVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	input := videos.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Controls:     true,
	}
	if req.Controls != nil {
		input.Controls = *req.Controls
	}
	if t := req.Transformation; t != nil {
		input.Transformation = &models.Transformation{Width: t.Width, Height: t.Height, Quality: t.Quality}
	}

	video, err := h.Videos.Create(ctx, actor, input)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, newVideoResponse(video))
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Videos.Get(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, newVideoResponse(video))
}

// Update handles PUT /api/v1/videos/{id}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	var req updateVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.Update(ctx, actor, r.PathValue("id"), req.Title, req.Description)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"message": "Video updated successfully",
		"video":   newVideoResponse(video),
	})
}

// Delete handles DELETE /api/v1/videos/{id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	if err := h.Videos.Delete(ctx, actor, r.PathValue("id")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "Video deleted successfully"})
}

type transformationRequest struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality string `json:"quality"`
}

type createVideoRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	VideoURL       string                 `json:"videoUrl"`
	ThumbnailURL   string                 `json:"thumbnailUrl"`
	Controls       *bool                  `json:"controls"`
	Transformation *transformationRequest `json:"transformation"`
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
