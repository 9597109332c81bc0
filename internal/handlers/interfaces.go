package handlers

import (
	"context"
	"io"

	"github.com/pulse/backend/internal/accounts"
	"github.com/pulse/backend/internal/engagement"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/profiles"
	"github.com/pulse/backend/internal/relationships"
	"github.com/pulse/backend/internal/storage"
	"github.com/pulse/backend/internal/videos"
)

// AccountService captures the account lifecycle used by the auth and user handlers.
type AccountService interface {
	Register(ctx context.Context, email, password, name string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.Identity, error)
	Current(ctx context.Context, actor models.Identity) (models.User, error)
	UpdateProfile(ctx context.Context, actor models.Identity, changes models.ProfileChanges) (models.User, error)
	UpdateImage(ctx context.Context, actor models.Identity, filename string, content io.Reader) (models.User, error)
	Delete(ctx context.Context, actor models.Identity) error
	Lookup(ctx context.Context, refs []string) ([]accounts.Summary, error)
}

// SessionManager issues, refreshes and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, identity models.Identity) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// RelationshipService captures follow and block operations.
type RelationshipService interface {
	ToggleFollow(ctx context.Context, actor models.Identity, target string) (relationships.FollowState, error)
	FollowStatus(ctx context.Context, actor *models.Identity, target string) (relationships.FollowState, error)
	ToggleBlock(ctx context.Context, actor models.Identity, targetID string) (bool, error)
	IsBlocked(ctx context.Context, actor models.Identity, candidateID string) (bool, error)
	RemoveFollower(ctx context.Context, actor models.Identity, follower string) (int, error)
}

// EngagementService captures likes and comments.
type EngagementService interface {
	ToggleLike(ctx context.Context, actor models.Identity, videoID string) (engagement.LikeState, error)
	LikeStatus(ctx context.Context, actor *models.Identity, videoID string) (engagement.LikeState, error)
	AddComment(ctx context.Context, actor models.Identity, videoID, text string) (models.Comment, int, error)
	ListComments(ctx context.Context, videoID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, actor models.Identity, videoID, commentID string) error
}

// ProfileService builds the caller's profile view.
type ProfileService interface {
	Get(ctx context.Context, actor models.Identity) (profiles.Profile, error)
}

// VideoCatalog publishes and serves videos.
type VideoCatalog interface {
	Create(ctx context.Context, actor models.Identity, input videos.CreateInput) (models.Video, error)
	Feed(ctx context.Context, viewer *models.Identity) ([]models.Video, error)
	Get(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, actor models.Identity, id, title, description string) (models.Video, error)
	Delete(ctx context.Context, actor models.Identity, id string) error
}

// UploadAuthorizer signs direct-to-bucket uploads.
type UploadAuthorizer interface {
	PresignUpload(ctx context.Context, key, contentType string) (storage.UploadAuthorization, error)
}
