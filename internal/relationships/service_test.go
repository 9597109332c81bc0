package relationships

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

type fixture struct {
	ctx   context.Context
	users *repositories.MemoryUserRepository
	svc   *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	users := repositories.NewMemoryStore().Users()
	return fixture{ctx: context.Background(), users: users, svc: NewService(users)}
}

func (f fixture) user(t *testing.T, email string) models.User {
	t.Helper()
	u := models.User{ID: models.NewObjectID(), Email: email, Name: email, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f fixture) reload(t *testing.T, u models.User) models.User {
	t.Helper()
	got, err := f.users.FindByID(f.ctx, u.ID)
	require.NoError(t, err)
	return got
}

func assertSymmetric(t *testing.T, a, b models.User) {
	t.Helper()
	assert.Equal(t, models.ContainsUser(a.Following, b), models.ContainsUser(b.Followers, a),
		"%s follows %s must match %s's followers", a.Email, b.Email, b.Email)
	assert.Equal(t, models.ContainsUser(b.Following, a), models.ContainsUser(a.Followers, b),
		"%s follows %s must match %s's followers", b.Email, a.Email, a.Email)
}

func TestToggleFollowIsSelfInverseAndSymmetric(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	state, err := f.svc.ToggleFollow(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.True(t, state.IsFollowing)
	assert.Equal(t, 1, state.FollowerCount)

	a, b := f.reload(t, alice), f.reload(t, bob)
	assert.Equal(t, []string{bob.ID}, a.Following)
	assert.Equal(t, []string{alice.ID}, b.Followers)
	assertSymmetric(t, a, b)

	state, err = f.svc.ToggleFollow(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.False(t, state.IsFollowing)
	assert.Equal(t, 0, state.FollowerCount)

	a, b = f.reload(t, alice), f.reload(t, bob)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)
	assertSymmetric(t, a, b)
}

func TestToggleFollowMutualFollowKeepsBothPairsSymmetric(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	_, err := f.svc.ToggleFollow(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleFollow(f.ctx, bob.Identity(), alice.Email)
	require.NoError(t, err)

	a, b := f.reload(t, alice), f.reload(t, bob)
	assert.True(t, models.ContainsUser(a.Following, b))
	assert.True(t, models.ContainsUser(b.Following, a))
	assertSymmetric(t, a, b)
}

func TestToggleFollowRecognisesLegacyEmailReferences(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	// A follow written before object ids existed.
	require.NoError(t, f.users.MutateRelationships(f.ctx, alice.ID, bob.ID, func(a, b *models.User) error {
		a.Following = []string{"BOB@example.com"}
		b.Followers = []string{"alice@example.com"}
		return nil
	}))

	status, err := f.svc.FollowStatus(f.ctx, &models.Identity{UserID: alice.ID, Email: alice.Email}, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)

	state, err := f.svc.ToggleFollow(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.False(t, state.IsFollowing, "legacy follow must be recognised and removed")

	a, b := f.reload(t, alice), f.reload(t, bob)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)
}

func TestToggleFollowRejections(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	_, err := f.svc.ToggleFollow(f.ctx, alice.Identity(), alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	_, err = f.svc.ToggleFollow(f.ctx, alice.Identity(), "ALICE@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	_, err = f.svc.ToggleFollow(f.ctx, alice.Identity(), models.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.ToggleFollow(f.ctx, models.Identity{}, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.svc.ToggleFollow(f.ctx, alice.Identity(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestFollowStatusUnauthenticated(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	_, err := f.svc.ToggleFollow(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)

	status, err := f.svc.FollowStatus(f.ctx, nil, bob.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)
	assert.Equal(t, 1, status.FollowerCount)
}

func TestToggleBlockIsUnidirectional(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")

	blocked, err := f.svc.ToggleBlock(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	a, b := f.reload(t, alice), f.reload(t, bob)
	assert.Equal(t, []string{bob.ID}, a.BlockedUsers)
	assert.Empty(t, b.BlockedUsers, "target's own record must not change")

	isBlocked, err := f.svc.IsBlocked(f.ctx, alice.Identity(), bob.Email)
	require.NoError(t, err)
	assert.True(t, isBlocked)

	isBlocked, err = f.svc.IsBlocked(f.ctx, bob.Identity(), alice.ID)
	require.NoError(t, err)
	assert.False(t, isBlocked)

	isBlocked, err = f.svc.IsBlocked(f.ctx, carol.Identity(), bob.ID)
	require.NoError(t, err)
	assert.False(t, isBlocked)

	blocked, err = f.svc.ToggleBlock(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Empty(t, f.reload(t, alice).BlockedUsers)
}

func TestToggleBlockSelfAlwaysRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	for i := 0; i < 2; i++ {
		_, err := f.svc.ToggleBlock(f.ctx, alice.Identity(), alice.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)
		_, err = f.svc.ToggleBlock(f.ctx, alice.Identity(), alice.Email)
		assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)
	}
	assert.Empty(t, f.reload(t, alice).BlockedUsers)

	_, err := f.svc.ToggleBlock(f.ctx, alice.Identity(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestToggleBlockUnknownTargetTogglesRawValue(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	ghost := models.NewObjectID()

	blocked, err := f.svc.ToggleBlock(f.ctx, alice.Identity(), ghost)
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, []string{ghost}, f.reload(t, alice).BlockedUsers)

	blocked, err = f.svc.ToggleBlock(f.ctx, alice.Identity(), ghost)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRemoveFollower(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	_, err := f.svc.ToggleFollow(f.ctx, bob.Identity(), alice.ID)
	require.NoError(t, err)

	count, err := f.svc.RemoveFollower(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	a, b := f.reload(t, alice), f.reload(t, bob)
	assert.Empty(t, a.Followers)
	assert.Empty(t, b.Following)
	assertSymmetric(t, a, b)

	count, err = f.svc.RemoveFollower(f.ctx, alice.Identity(), bob.ID)
	require.NoError(t, err, "removing a non-follower is a no-op")
	assert.Equal(t, 0, count)

	_, err = f.svc.RemoveFollower(f.ctx, alice.Identity(), alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)
}
