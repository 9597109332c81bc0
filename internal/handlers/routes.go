package handlers

import (
	"net/http"

	"github.com/pulse/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts      AccountService
	Sessions      SessionManager
	Relationships RelationshipService
	Engagement    EngagementService
	Profiles      ProfileService
	Videos        VideoCatalog
	// Uploads is nil when no object store is configured.
	Uploads     UploadAuthorizer
	AuthLimiter RateLimiter
	HealthCheck map[string]HealthCheck
	Metrics     http.Handler
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Routes that
// need a caller are wrapped in middleware.RequireIdentity; the identity itself
// is attached by middleware.Authenticate around the mux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Checks: deps.HealthCheck}
	auth := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	users := UserHandler{Accounts: deps.Accounts, Relationships: deps.Relationships, Sessions: deps.Sessions}
	videos := VideoHandler{Videos: deps.Videos}
	engagement := EngagementHandler{Engagement: deps.Engagement}
	profile := ProfileHandler{Profiles: deps.Profiles}
	uploads := UploadHandler{Uploads: deps.Uploads}

	protected := func(h http.HandlerFunc) http.Handler { return middleware.RequireIdentity(h) }

	mux.HandleFunc("GET /healthz", health.Handle)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	mux.HandleFunc("POST /api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.Logout)

	mux.Handle("POST /api/v1/users/{id}/follow", protected(users.ToggleFollow))
	mux.HandleFunc("GET /api/v1/users/{id}/follow", users.FollowStatus)
	mux.Handle("POST /api/v1/users/block", protected(users.ToggleBlock))
	mux.Handle("GET /api/v1/users/block", protected(users.BlockStatus))
	mux.Handle("DELETE /api/v1/users/me/followers/{id}", protected(users.RemoveFollower))
	mux.HandleFunc("POST /api/v1/users/batch", users.Batch)
	mux.Handle("GET /api/v1/users/me", protected(users.Me))
	mux.Handle("PUT /api/v1/users/me", protected(users.UpdateMe))
	mux.Handle("POST /api/v1/users/me/image", protected(users.UploadImage))
	mux.Handle("DELETE /api/v1/users/me", protected(users.DeleteMe))

	mux.Handle("GET /api/v1/profile", protected(profile.Get))

	mux.HandleFunc("GET /api/v1/videos", videos.Feed)
	mux.Handle("POST /api/v1/videos", protected(videos.Create))
	mux.HandleFunc("GET /api/v1/videos/{id}", videos.Get)
	mux.Handle("PUT /api/v1/videos/{id}", protected(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{id}", protected(videos.Delete))

	mux.Handle("POST /api/v1/videos/{id}/like", protected(engagement.ToggleLike))
	mux.HandleFunc("GET /api/v1/videos/{id}/like", engagement.LikeStatus)
	mux.Handle("POST /api/v1/videos/{id}/comments", protected(engagement.AddComment))
	mux.HandleFunc("GET /api/v1/videos/{id}/comments", engagement.ListComments)
	mux.Handle("DELETE /api/v1/videos/{id}/comments", protected(engagement.DeleteComment))

	mux.Handle("GET /api/v1/uploads/auth", protected(uploads.Authorize))
}
