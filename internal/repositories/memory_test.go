package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulse/backend/internal/models"
)

func newMemoryUser(t *testing.T, repo *MemoryUserRepository, email string) models.User {
	t.Helper()
	now := time.Now().UTC()
	user := models.User{
		ID:        models.NewObjectID(),
		Email:     email,
		Password:  "password-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func TestMemoryUserRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()

	alice := newMemoryUser(t, repo, "alice@example.com")
	dup := models.User{ID: models.NewObjectID(), Email: "ALICE@example.com"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	bob := newMemoryUser(t, repo, "bob@example.com")
	name := "alice"
	if _, err := repo.UpdateProfile(ctx, alice.ID, models.ProfileChanges{Username: &name}); err != nil {
		t.Fatalf("set username: %v", err)
	}
	if _, err := repo.UpdateProfile(ctx, bob.ID, models.ProfileChanges{Username: &name}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for taken username, got %v", err)
	}

	found, err := repo.FindByUsername(ctx, "alice")
	if err != nil || found.ID != alice.ID {
		t.Fatalf("find by username: %+v, %v", found, err)
	}
}

func TestMemoryUserRepository_MutateRelationshipsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()

	alice := newMemoryUser(t, repo, "alice@example.com")
	bob := newMemoryUser(t, repo, "bob@example.com")

	failure := errors.New("abort")
	err := repo.MutateRelationships(ctx, alice.ID, bob.ID, func(actor, target *models.User) error {
		actor.Following = append(actor.Following, target.ID)
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected callback error, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, alice.ID)
	if len(stored.Following) != 0 {
		t.Fatalf("expected aborted mutation to leave following empty, got %v", stored.Following)
	}

	if err := repo.MutateRelationships(ctx, alice.ID, models.NewObjectID(), func(_, _ *models.User) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown target, got %v", err)
	}
}

func TestMemoryStore_DeleteCascade(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := store.Users()
	videos := store.Videos()

	doomed := newMemoryUser(t, users, "doomed@example.com")
	friend := newMemoryUser(t, users, "friend@example.com")

	if err := users.MutateRelationships(ctx, friend.ID, doomed.ID, func(actor, target *models.User) error {
		actor.Following = []string{target.ID, "doomed@example.com"}
		actor.BlockedUsers = []string{target.Email}
		target.Followers = []string{actor.ID}
		return nil
	}); err != nil {
		t.Fatalf("seed relationships: %v", err)
	}

	now := time.Now().UTC()
	for _, v := range []models.Video{
		{ID: models.NewObjectID(), UserID: doomed.ID, Title: "new", CreatedAt: now},
		{ID: models.NewObjectID(), UserID: "Doomed@Example.com", Title: "legacy", CreatedAt: now},
		{ID: models.NewObjectID(), UserID: friend.ID, Title: "keep", Likes: []string{doomed.Email}, CreatedAt: now},
	} {
		if err := videos.Create(ctx, v); err != nil {
			t.Fatalf("create video: %v", err)
		}
	}

	if err := users.DeleteCascade(ctx, doomed); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	remaining, _ := videos.List(ctx, 0)
	if len(remaining) != 1 || remaining[0].Title != "keep" {
		t.Fatalf("expected only the friend's video to remain, got %+v", remaining)
	}
	if len(remaining[0].Likes) != 0 {
		t.Fatalf("expected likes by the deleted user to be removed, got %v", remaining[0].Likes)
	}

	reloaded, _ := users.FindByID(ctx, friend.ID)
	if models.ContainsUser(reloaded.Following, doomed) || models.ContainsUser(reloaded.BlockedUsers, doomed) {
		t.Fatalf("expected deleted user to be stripped from relationship sets, got %+v", reloaded)
	}
	if _, err := users.FindByID(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
	if err := users.DeleteCascade(ctx, doomed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestMemoryVideoRepository_ListByOwnerMatchesLegacyReferences(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	owner := newMemoryUser(t, store.Users(), "carol@example.com")
	videos := store.Videos()

	base := time.Now().UTC().Add(-time.Hour)
	fixtures := []models.Video{
		{ID: "by-id", UserID: owner.ID, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "by-email", UserID: "carol@example.com", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "ownerless", UserName: "carol", CreatedAt: base.Add(time.Minute)},
		{ID: "other", UserID: models.NewObjectID(), CreatedAt: base},
	}
	for _, v := range fixtures {
		if err := videos.Create(ctx, v); err != nil {
			t.Fatalf("create %s: %v", v.ID, err)
		}
	}

	owned, err := videos.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 3 {
		t.Fatalf("expected 3 owned videos, got %d", len(owned))
	}
	if owned[0].ID != "by-id" || owned[1].ID != "by-email" || owned[2].ID != "ownerless" {
		t.Fatalf("unexpected order: %s, %s, %s", owned[0].ID, owned[1].ID, owned[2].ID)
	}
}

func TestMemoryVideoRepository_CommentsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	videos := NewMemoryStore().Videos()

	if _, err := videos.AddComment(ctx, models.Comment{ID: uuid.NewString(), VideoID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}

	if err := videos.Create(ctx, models.Video{ID: "v1", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create video: %v", err)
	}

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for i, id := range ids {
		total, err := videos.AddComment(ctx, models.Comment{ID: id, VideoID: "v1", Text: "c"})
		if err != nil {
			t.Fatalf("add comment: %v", err)
		}
		if total != i+1 {
			t.Fatalf("expected total %d, got %d", i+1, total)
		}
	}

	if err := videos.DeleteComment(ctx, "v1", ids[1]); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if err := videos.DeleteComment(ctx, "v1", ids[1]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}

	comments, _ := videos.ListComments(ctx, "v1")
	if len(comments) != 2 || comments[0].ID != ids[0] || comments[1].ID != ids[2] {
		t.Fatalf("unexpected comments after delete: %+v", comments)
	}

	video, _ := videos.FindByID(ctx, "v1")
	if video.CommentCount != 2 {
		t.Fatalf("expected comment count 2, got %d", video.CommentCount)
	}
}
