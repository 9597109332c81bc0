// Package relationships implements follow and block relationships between users.
package relationships

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pulse/backend/internal/apperrors"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
	"github.com/pulse/backend/internal/repositories"
)

// UserStore is the persistence the relationship engine depends on.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	MutateUser(ctx context.Context, id string, fn func(user *models.User) error) (models.User, error)
	MutateRelationships(ctx context.Context, actorID, targetID string, fn func(actor, target *models.User) error) error
}

// FollowState is the relationship between a caller and a target after an operation.
type FollowState struct {
	IsFollowing   bool
	FollowerCount int
}

var (
	errSelfFollow  = apperrors.New(apperrors.KindInvalidOperation, "You cannot follow yourself")
	errSelfBlock   = apperrors.New(apperrors.KindInvalidOperation, "You cannot block yourself")
	errSelfRemove  = apperrors.New(apperrors.KindInvalidOperation, "You cannot remove yourself as a follower")
	errNoTarget    = apperrors.New(apperrors.KindInvalidInput, "User ID is required")
	errUserMissing = apperrors.New(apperrors.KindNotFound, "User not found")
)

// Service toggles follow and block relationships.
type Service struct {
	users UserStore
}

// NewService constructs a relationship engine over users.
func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// ToggleFollow flips whether actor follows target and returns the new state
// along with the target's follower count.
func (s *Service) ToggleFollow(ctx context.Context, actor models.Identity, target string) (FollowState, error) {
	ctx, span := logging.StartSpan(ctx, "relationships.toggle_follow")
	defer span.End()

	target = strings.TrimSpace(target)
	if target == "" {
		return FollowState{}, errNoTarget
	}
	if actor.Matches(target) {
		return FollowState{}, errSelfFollow
	}

	self, err := s.loadActor(ctx, actor)
	if err != nil {
		return FollowState{}, err
	}
	other, err := s.resolve(ctx, target)
	if err != nil {
		return FollowState{}, err
	}
	if self.ID == other.ID {
		return FollowState{}, errSelfFollow
	}

	var state FollowState
	err = s.users.MutateRelationships(ctx, self.ID, other.ID, func(a, t *models.User) error {
		following := models.ContainsUser(a.Following, *t)
		if following {
			a.Following = models.RemoveUser(a.Following, *t)
			t.Followers = models.RemoveUser(t.Followers, *a)
		} else {
			a.Following = models.AddUser(a.Following, *t)
			t.Followers = models.AddUser(t.Followers, *a)
		}
		state = FollowState{IsFollowing: !following, FollowerCount: len(t.Followers)}
		return nil
	})
	if err != nil {
		err = storeError("toggle follow", err)
		span.Fail(err)
		return FollowState{}, err
	}

	logging.FromContext(ctx).Info("follow toggled",
		slog.String("actor_id", self.ID),
		slog.String("target_id", other.ID),
		slog.Bool("following", state.IsFollowing),
	)
	return state, nil
}

// FollowStatus reports whether actor follows target. A nil actor never follows.
func (s *Service) FollowStatus(ctx context.Context, actor *models.Identity, target string) (FollowState, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return FollowState{}, errNoTarget
	}

	other, err := s.resolve(ctx, target)
	if err != nil {
		return FollowState{}, err
	}

	state := FollowState{FollowerCount: len(other.Followers)}
	if actor == nil || actor.UserID == "" {
		return state, nil
	}

	self, err := s.loadActor(ctx, *actor)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnauthorized {
			return state, nil
		}
		return FollowState{}, err
	}
	state.IsFollowing = models.ContainsUser(self.Following, other)
	return state, nil
}

// ToggleBlock flips whether target is in actor's blocked set. Only the actor's
// record changes. Unknown targets are toggled by their raw value.
func (s *Service) ToggleBlock(ctx context.Context, actor models.Identity, targetID string) (bool, error) {
	ctx, span := logging.StartSpan(ctx, "relationships.toggle_block")
	defer span.End()

	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return false, errNoTarget
	}
	if actor.Matches(targetID) {
		return false, errSelfBlock
	}

	self, err := s.loadActor(ctx, actor)
	if err != nil {
		return false, err
	}
	if self.Matches(targetID) {
		return false, errSelfBlock
	}

	other, resolved, err := s.tryResolve(ctx, targetID)
	if err != nil {
		return false, err
	}
	if resolved && other.ID == self.ID {
		return false, errSelfBlock
	}

	var blocked bool
	_, err = s.users.MutateUser(ctx, self.ID, func(u *models.User) error {
		if resolved {
			blocked = !models.ContainsUser(u.BlockedUsers, other)
			if blocked {
				u.BlockedUsers = models.AddUser(u.BlockedUsers, other)
			} else {
				u.BlockedUsers = models.RemoveUser(u.BlockedUsers, other)
			}
			return nil
		}

		blocked = !models.ContainsRef(u.BlockedUsers, targetID)
		if blocked {
			u.BlockedUsers = append(u.BlockedUsers, targetID)
		} else {
			u.BlockedUsers = models.RemoveRef(u.BlockedUsers, targetID)
		}
		return nil
	})
	if err != nil {
		return false, storeError("toggle block", err)
	}

	logging.FromContext(ctx).Info("block toggled",
		slog.String("actor_id", self.ID),
		slog.String("target", targetID),
		slog.Bool("blocked", blocked),
	)
	return blocked, nil
}

// IsBlocked reports whether actor has blocked candidateID.
func (s *Service) IsBlocked(ctx context.Context, actor models.Identity, candidateID string) (bool, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return false, errNoTarget
	}

	self, err := s.loadActor(ctx, actor)
	if err != nil {
		return false, err
	}

	other, resolved, err := s.tryResolve(ctx, candidateID)
	if err != nil {
		return false, err
	}
	if resolved {
		return models.ContainsUser(self.BlockedUsers, other), nil
	}
	return models.ContainsRef(self.BlockedUsers, candidateID), nil
}

// RemoveFollower makes follower stop following actor. It is a no-op when
// follower does not follow actor. It returns actor's follower count.
func (s *Service) RemoveFollower(ctx context.Context, actor models.Identity, follower string) (int, error) {
	ctx, span := logging.StartSpan(ctx, "relationships.remove_follower")
	defer span.End()

	follower = strings.TrimSpace(follower)
	if follower == "" {
		return 0, errNoTarget
	}
	if actor.Matches(follower) {
		return 0, errSelfRemove
	}

	self, err := s.loadActor(ctx, actor)
	if err != nil {
		return 0, err
	}
	other, err := s.resolve(ctx, follower)
	if err != nil {
		return 0, err
	}
	if other.ID == self.ID {
		return 0, errSelfRemove
	}

	var count int
	err = s.users.MutateRelationships(ctx, other.ID, self.ID, func(f, a *models.User) error {
		f.Following = models.RemoveUser(f.Following, *a)
		a.Followers = models.RemoveUser(a.Followers, *f)
		count = len(a.Followers)
		return nil
	})
	if err != nil {
		return 0, storeError("remove follower", err)
	}
	return count, nil
}

func (s *Service) loadActor(ctx context.Context, actor models.Identity) (models.User, error) {
	if actor.UserID == "" {
		return models.User{}, apperrors.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if errors.Is(err, repositories.ErrNotFound) && actor.Email != "" {
		user, err = s.users.FindByEmail(ctx, actor.Email)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, apperrors.ErrUnauthorized
	}
	if err != nil {
		return models.User{}, apperrors.Internal("load actor", err)
	}
	return user, nil
}

func (s *Service) resolve(ctx context.Context, ref string) (models.User, error) {
	user, err := repositories.ResolveUser(ctx, s.users, ref)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, errUserMissing
	}
	if err != nil {
		return models.User{}, apperrors.Internal("resolve user", err)
	}
	return user, nil
}

func (s *Service) tryResolve(ctx context.Context, ref string) (models.User, bool, error) {
	user, err := s.resolve(ctx, ref)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func storeError(op string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return errUserMissing
	}
	return apperrors.Internal(op, err)
}
