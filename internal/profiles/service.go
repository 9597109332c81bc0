// Package profiles composes a user's profile view from the user and video stores.
package profiles

import (
	"context"
	"errors"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/repositories"
)

// UserStore looks up the profile owner.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// VideoStore lists the profile owner's videos.
type VideoStore interface {
	ListByOwner(ctx context.Context, user models.User) ([]models.Video, error)
}

// Stats aggregates engagement across a user's videos.
type Stats struct {
	TotalVideos int
	TotalViews  int64
	TotalLikes  int
}

// Profile is the read-only view of a user returned to its owner.
type Profile struct {
	User           models.User
	Videos         []models.Video
	Stats          Stats
	FollowersCount int
	FollowingCount int
}

// Service builds profiles. It never writes.
type Service struct {
	users  UserStore
	videos VideoStore
}

func NewService(users UserStore, videos VideoStore) *Service {
	return &Service{users: users, videos: videos}
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, actor models.Identity) (Profile, error) {
	if actor.UserID == "" {
		return Profile{}, apperrors.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if errors.Is(err, repositories.ErrNotFound) && actor.Email != "" {
		user, err = s.users.FindByEmail(ctx, actor.Email)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return Profile{}, apperrors.New(apperrors.KindNotFound, "User not found")
	}
	if err != nil {
		return Profile{}, apperrors.Internal("load profile user", err)
	}

	videos, err := s.videos.ListByOwner(ctx, user)
	if err != nil {
		return Profile{}, apperrors.Internal("list profile videos", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}

	var stats Stats
	for i := range videos {
		// Ownerless legacy rows are attributed in the response only.
		if videos[i].UserID == "" {
			videos[i].UserID = user.ID
		}
		stats.TotalViews += videos[i].Views
		stats.TotalLikes += len(videos[i].Likes)
	}
	stats.TotalVideos = len(videos)

	return Profile{
		User:           user.Sanitized(),
		Videos:         videos,
		Stats:          stats,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
	}, nil
}
