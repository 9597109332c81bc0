package handlers

import "net/http"

// ProfileHandler serves the caller's profile.
type ProfileHandler struct {
	Profiles ProfileService
}

// Get handles GET /api/v1/profile.
func (h ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := identity(r)

	profile, err := h.Profiles.Get(ctx, actor)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{
		User:   newUserResponse(profile.User),
		Videos: newVideoResponses(profile.Videos),
		Stats: statsResponse{
			TotalVideos:    profile.Stats.TotalVideos,
			TotalViews:     profile.Stats.TotalViews,
			TotalLikes:     profile.Stats.TotalLikes,
			FollowersCount: profile.FollowersCount,
			FollowingCount: profile.FollowingCount,
		},
	})
}

type statsResponse struct {
	TotalVideos    int   `json:"totalVideos"`
	TotalViews     int64 `json:"totalViews"`
	TotalLikes     int   `json:"totalLikes"`
	FollowersCount int   `json:"followersCount"`
	FollowingCount int   `json:"followingCount"`
}

type profileResponse struct {
	User   userResponse    `json:"user"`
	Videos []videoResponse `json:"videos"`
	Stats  statsResponse   `json:"stats"`
}
