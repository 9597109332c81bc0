package repositories

import (
	"context"
	"errors"

	"github.com/pulse/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindMany(ctx context.Context, refs []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, changes models.ProfileChanges) (models.User, error)
	// MutateUser loads the user under a row lock and persists the relationship
	// sets fn leaves behind. Other fields changed by fn are not written.
	MutateUser(ctx context.Context, id string, fn func(user *models.User) error) (models.User, error)
}

// RelationshipRepository writes changes spanning more than one user record.
type RelationshipRepository interface {
	// MutateRelationships locks both users and persists the relationship sets of
	// both in one transaction. fn may be invoked more than once on retry.
	MutateRelationships(ctx context.Context, actorID, targetID string, fn func(actor, target *models.User) error) error
	// DeleteCascade removes the user's videos, strips the user from every other
	// user's relationship sets and deletes the user record, atomically.
	DeleteCascade(ctx context.Context, user models.User) error
}

// UserFinder is the lookup subset of UserRepository used to resolve references.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// ResolveUser loads the user a raw reference names. Object ids are looked up by
// id, emails by email; anything else is tried as a plain id.
func ResolveUser(ctx context.Context, users UserFinder, raw string) (models.User, error) {
	ref := models.ParseUserRef(raw)
	switch ref.Kind {
	case models.RefLegacyEmail:
		return users.FindByEmail(ctx, ref.Value)
	default:
		if ref.IsZero() {
			return models.User{}, ErrNotFound
		}
		return users.FindByID(ctx, ref.Value)
	}
}

// FindActor loads the stored record of an authenticated caller by id, falling
// back to the email the session carries. ErrNotFound means the account is gone.
func FindActor(ctx context.Context, users UserFinder, actor models.Identity) (models.User, error) {
	if actor.UserID == "" {
		return models.User{}, ErrNotFound
	}
	user, err := users.FindByID(ctx, actor.UserID)
	if errors.Is(err, ErrNotFound) && actor.Email != "" {
		user, err = users.FindByEmail(ctx, actor.Email)
	}
	return user, err
}
