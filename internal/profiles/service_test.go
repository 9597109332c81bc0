package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/repositories"
)

func TestGetIncludesLegacyOwnedVideosAndStats(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	users, videos := store.Users(), store.Videos()

	user := models.User{
		ID:        models.NewObjectID(),
		Email:     "dana@example.com",
		Password:  "secret-hash",
		Followers: []string{"a", "b"},
		Following: []string{"c"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, users.Create(ctx, user))

	base := time.Now().UTC().Add(-time.Hour)
	for _, v := range []models.Video{
		{ID: "new", UserID: user.ID, Views: 10, Likes: []string{"x@example.com", "y@example.com"}, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "legacy", UserID: "dana@example.com", Views: 5, Likes: []string{"x@example.com"}, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "ownerless", UserName: "dana", Views: 1, CreatedAt: base.Add(time.Minute)},
		{ID: "other", UserID: models.NewObjectID(), Views: 100, CreatedAt: base},
	} {
		require.NoError(t, videos.Create(ctx, v))
	}

	profile, err := NewService(users, videos).Get(ctx, user.Identity())
	require.NoError(t, err)

	assert.Empty(t, profile.User.Password, "credential must be excluded")
	assert.Equal(t, 2, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingCount)
	assert.Equal(t, Stats{TotalVideos: 3, TotalViews: 16, TotalLikes: 3}, profile.Stats)

	require.Len(t, profile.Videos, 3)
	assert.Equal(t, "legacy", profile.Videos[1].ID)
	assert.Equal(t, "dana@example.com", profile.Videos[1].UserID)
	assert.Equal(t, user.ID, profile.Videos[2].UserID, "missing owner id is backfilled")

	stored, err := videos.FindByID(ctx, "ownerless")
	require.NoError(t, err)
	assert.Empty(t, stored.UserID, "backfill must not be persisted")
}

func TestGetRequiresIdentity(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewService(store.Users(), store.Videos())

	_, err := svc.Get(context.Background(), models.Identity{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Get(context.Background(), models.Identity{UserID: models.NewObjectID()})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
