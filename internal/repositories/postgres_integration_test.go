//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/db"
	"github.com/pulse/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)

	user := createTestUser(t, repo, "Alice@Example.com")

	dup := models.User{
		ID:        models.NewObjectID(),
		Email:     "alice@example.com",
		Password:  "another-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate email, got %v", err)
	}

	fetched, err := repo.FindByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if fetched.ID != user.ID || fetched.Email != "alice@example.com" {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}
	if fetched.Followers == nil || len(fetched.Followers) != 0 {
		t.Fatalf("expected empty followers, got %#v", fetched.Followers)
	}

	name, username := "Alice", "alice"
	updated, err := repo.UpdateProfile(ctx, user.ID, models.ProfileChanges{Name: &name, Username: &username})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != name || updated.Username != username {
		t.Fatalf("expected profile fields to persist, got %+v", updated)
	}

	other := createTestUser(t, repo, "bob@example.com")
	if _, err := repo.UpdateProfile(ctx, other.ID, models.ProfileChanges{Username: &username}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for taken username, got %v", err)
	}

	if _, err := repo.UpdateProfile(ctx, models.NewObjectID(), models.ProfileChanges{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}

	many, err := repo.FindMany(ctx, []string{user.ID, "BOB@example.com", "nobody"})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(many) != 2 {
		t.Fatalf("expected 2 users from batch lookup, got %d", len(many))
	}
}

func TestPostgresUserRepository_LegacyNullArraysReadAsEmpty(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	id := models.NewObjectID()
	if _, err := testPool.Exec(ctx, `
        INSERT INTO users (id, email, password_hash) VALUES ($1, 'legacy@example.com', 'hash')
    `, id); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	repo := NewPostgresUserRepository(testPool)
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find legacy user: %v", err)
	}
	if len(user.Followers) != 0 || len(user.Following) != 0 || len(user.BlockedUsers) != 0 {
		t.Fatalf("expected empty relationship sets, got %+v", user)
	}
}

func TestPostgresUserRepository_MutateRelationships(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	alice := createTestUser(t, repo, "alice@example.com")
	bob := createTestUser(t, repo, "bob@example.com")

	err := repo.MutateRelationships(ctx, alice.ID, bob.ID, func(actor, target *models.User) error {
		actor.Following = models.AddUser(actor.Following, *target)
		target.Followers = models.AddUser(target.Followers, *actor)
		return nil
	})
	if err != nil {
		t.Fatalf("mutate relationships: %v", err)
	}

	a, _ := repo.FindByID(ctx, alice.ID)
	b, _ := repo.FindByID(ctx, bob.ID)
	if !models.ContainsUser(a.Following, b) || !models.ContainsUser(b.Followers, a) {
		t.Fatalf("expected both sides to be written, got %v / %v", a.Following, b.Followers)
	}

	failure := errors.New("abort")
	err = repo.MutateRelationships(ctx, alice.ID, bob.ID, func(actor, target *models.User) error {
		actor.Following = nil
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected callback error, got %v", err)
	}
	a, _ = repo.FindByID(ctx, alice.ID)
	if len(a.Following) != 1 {
		t.Fatalf("expected aborted transaction to roll back, got %v", a.Following)
	}

	blocked, err := repo.MutateUser(ctx, alice.ID, func(user *models.User) error {
		user.BlockedUsers = append(user.BlockedUsers, bob.ID)
		user.Name = "ignored"
		return nil
	})
	if err != nil {
		t.Fatalf("mutate user: %v", err)
	}
	if len(blocked.BlockedUsers) != 1 {
		t.Fatalf("expected one blocked user, got %v", blocked.BlockedUsers)
	}
	a, _ = repo.FindByID(ctx, alice.ID)
	if a.Name != "" {
		t.Fatalf("expected MutateUser to write relationship sets only, got name %q", a.Name)
	}
}

func TestPostgresUserRepository_DeleteCascade(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	sessions := NewPostgresSessionStore(testPool)

	doomed := createTestUser(t, users, "doomed@example.com")
	friend := createTestUser(t, users, "friend@example.com")

	if err := users.MutateRelationships(ctx, friend.ID, doomed.ID, func(actor, target *models.User) error {
		actor.Following = []string{target.ID, "bystander@example.com"}
		actor.Followers = []string{"Doomed@Example.com"}
		actor.BlockedUsers = []string{target.ID}
		target.Followers = []string{actor.ID}
		return nil
	}); err != nil {
		t.Fatalf("seed relationships: %v", err)
	}

	ownVideo := createTestVideo(t, videos, doomed.ID, "own")
	legacyVideo := createTestVideo(t, videos, doomed.Email, "legacy")
	keptVideo := createTestVideo(t, videos, friend.ID, "kept")

	if _, err := videos.AddComment(ctx, models.Comment{ID: uuid.NewString(), VideoID: ownVideo.ID, UserID: friend.Email, Text: "hi", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if _, err := videos.MutateLikes(ctx, keptVideo.ID, func(likes []string) []string { return append(likes, "DOOMED@example.com", friend.Email) }); err != nil {
		t.Fatalf("like video: %v", err)
	}
	if err := sessions.Save(ctx, auth.Session{RefreshToken: uuid.NewString(), Identity: doomed.Identity(), ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	if err := users.DeleteCascade(ctx, doomed); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	for _, id := range []string{ownVideo.ID, legacyVideo.ID} {
		if _, err := videos.FindByID(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected video %s to be deleted, got %v", id, err)
		}
	}

	kept, err := videos.FindByID(ctx, keptVideo.ID)
	if err != nil {
		t.Fatalf("find kept video: %v", err)
	}
	if len(kept.Likes) != 1 || kept.Likes[0] != friend.Email {
		t.Fatalf("expected only the mixed-case like reference to be stripped, got %v", kept.Likes)
	}

	reloaded, err := users.FindByID(ctx, friend.ID)
	if err != nil {
		t.Fatalf("reload friend: %v", err)
	}
	if len(reloaded.Followers) != 0 || len(reloaded.BlockedUsers) != 0 {
		t.Fatalf("expected relationship sets to be empty, got %+v", reloaded)
	}
	if len(reloaded.Following) != 1 || reloaded.Following[0] != "bystander@example.com" {
		t.Fatalf("expected unrelated references to survive, got %v", reloaded.Following)
	}

	if _, err := users.FindByID(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
}

func TestPostgresVideoRepository_LikesCommentsAndOwnership(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, users, "carol@example.com")
	byID := createTestVideo(t, videos, owner.ID, "by id")
	byEmail := createTestVideo(t, videos, owner.Email, "by email")
	ownerless := models.Video{
		ID:             models.NewObjectID(),
		UserName:       "carol",
		Title:          "ownerless",
		VideoURL:       "https://cdn.example.com/ownerless.mp4",
		Transformation: models.DefaultTransformation,
		CreatedAt:      time.Now().UTC().Add(-time.Hour),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := videos.Create(ctx, ownerless); err != nil {
		t.Fatalf("create ownerless video: %v", err)
	}
	createTestVideo(t, videos, models.NewObjectID(), "stranger")

	owned, err := videos.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 3 {
		t.Fatalf("expected 3 owned videos, got %d", len(owned))
	}

	likes, err := videos.MutateLikes(ctx, byID.ID, func(likes []string) []string { return append(likes, "a@example.com") })
	if err != nil || len(likes) != 1 {
		t.Fatalf("like video: %v %v", likes, err)
	}
	if _, err := videos.MutateLikes(ctx, models.NewObjectID(), func(l []string) []string { return l }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound liking missing video, got %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		total, err := videos.AddComment(ctx, models.Comment{ID: id, VideoID: byEmail.ID, UserID: "a@example.com", Text: fmt.Sprintf("c%d", i), CreatedAt: time.Now().UTC()})
		if err != nil {
			t.Fatalf("add comment: %v", err)
		}
		if total != i+1 {
			t.Fatalf("expected total %d, got %d", i+1, total)
		}
	}

	if err := videos.DeleteComment(ctx, byEmail.ID, ids[1]); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	comments, err := videos.ListComments(ctx, byEmail.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != ids[0] || comments[1].ID != ids[2] {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	views, err := videos.IncrementViews(ctx, byID.ID)
	if err != nil || views != 1 {
		t.Fatalf("increment views: %d %v", views, err)
	}

	if err := videos.Delete(ctx, byEmail.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if _, err := videos.FindComment(ctx, byEmail.ID, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected comments to be removed with their video, got %v", err)
	}
}

func TestPostgresSessionStore_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, userRepo, "owner@example.com")

	store := NewPostgresSessionStore(testPool)
	expires := time.Now().UTC().Add(24 * time.Hour)
	session := auth.Session{
		RefreshToken: uuid.NewString(),
		Identity:     user.Identity(),
		ExpiresAt:    expires,
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	taken, err := store.Take(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("take session: %v", err)
	}
	if taken.Identity != session.Identity || !timesClose(taken.ExpiresAt, expires, time.Millisecond) {
		t.Fatalf("unexpected session taken: %+v", taken)
	}

	if _, err := store.Take(ctx, session.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second take, got %v", err)
	}
	if err := store.Delete(ctx, session.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting a taken session, got %v", err)
	}
}

func TestPostgresSessionStore_SavePurgesExpired(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	user := createTestUser(t, NewPostgresUserRepository(testPool), "owner@example.com")
	store := NewPostgresSessionStore(testPool)

	stale := auth.Session{RefreshToken: uuid.NewString(), Identity: user.Identity(), ExpiresAt: time.Now().Add(-time.Hour)}
	fresh := auth.Session{RefreshToken: uuid.NewString(), Identity: user.Identity(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, stale); err != nil {
		t.Fatalf("save stale session: %v", err)
	}
	if err := store.Save(ctx, fresh); err != nil {
		t.Fatalf("save fresh session: %v", err)
	}

	if _, err := store.Take(ctx, stale.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be purged, got %v", err)
	}
	if err := store.Delete(ctx, fresh.RefreshToken); err != nil {
		t.Fatalf("expected fresh session to remain: %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	scripts, err := db.UpMigrations()
	if err != nil {
		return err
	}
	for i, script := range scripts {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE video_comments, videos, sessions, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, email string) models.User {
	t.Helper()
	user := models.User{
		ID:        models.NewObjectID(),
		Email:     email,
		Password:  "password-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, owner, title string) models.Video {
	t.Helper()
	video := models.Video{
		ID:             models.NewObjectID(),
		UserID:         owner,
		Title:          title,
		VideoURL:       "https://cdn.example.com/" + title + ".mp4",
		Controls:       true,
		Transformation: models.DefaultTransformation,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
