package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulse/backend/internal/models"
)

var testIdentity = models.Identity{UserID: "65a1f0c2e4b0a1b2c3d4e5f6", Email: "alice@example.com", Name: "Alice"}

func newTestManager(t *testing.T, accessTTL, refreshTTL time.Duration) (*Manager, *InMemorySessionStore) {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret-0123456789")
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	store := NewInMemorySessionStore()
	return NewManager(accessTTL, refreshTTL, store, issuer, nil), store
}

func TestManagerIssueResolveAndRefresh(t *testing.T) {
	manager, store := newTestManager(t, time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	identity, err := manager.Resolve(context.Background(), tokens.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity != testIdentity {
		t.Fatalf("expected %+v got %+v", testIdentity, identity)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("old token should have been removed")
	}
	if !store.Has(refreshed.RefreshToken) {
		t.Fatal("expected rotated token to be stored")
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected replayed refresh token to be rejected, got %v", err)
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute, time.Hour)
	if _, err := manager.Issue(context.Background(), models.Identity{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute, time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	manager.NowFunc = func() time.Time { return now }

	if _, err := manager.Refresh(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(2 * time.Hour)

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected refresh expired got %v", err)
	}

	tokens, err = manager.Issue(context.Background(), testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.Revoke(context.Background(), tokens.RefreshToken)
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found after revoke got %v", err)
	}
}

func TestManagerResolveRejectsBadTokens(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute, time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	manager.NowFunc = func() time.Time { return now }

	tokens, err := manager.Issue(context.Background(), testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, err := NewTokenIssuer("another-secret-0123456789")
	if err != nil {
		t.Fatalf("other issuer: %v", err)
	}
	forged, err := other.Sign(testIdentity, now, time.Minute)
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	if _, err := manager.Resolve(context.Background(), forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign signature, got %v", err)
	}
	if _, err := manager.Resolve(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for garbage, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := manager.Resolve(context.Background(), tokens.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestManagerLogoutRevokesAccessToken(t *testing.T) {
	manager, store := newTestManager(t, time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := manager.Logout(context.Background(), tokens.AccessToken, tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := manager.Resolve(context.Background(), tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("expected refresh token to be dropped on logout")
	}
}

func TestManagerRevokeAll(t *testing.T) {
	manager, store := newTestManager(t, time.Minute, time.Hour)

	first, _ := manager.Issue(context.Background(), testIdentity)
	second, _ := manager.Issue(context.Background(), testIdentity)
	other, _ := manager.Issue(context.Background(), models.Identity{UserID: "someone-else", Email: "bob@example.com"})

	manager.RevokeAll(context.Background(), testIdentity.UserID)

	if store.Has(first.RefreshToken) || store.Has(second.RefreshToken) {
		t.Fatal("expected every session of the user to be removed")
	}
	if !store.Has(other.RefreshToken) {
		t.Fatal("expected other users' sessions to remain")
	}
}

func TestPasswordHasherVerifiesArgonAndLegacyBcrypt(t *testing.T) {
	hasher := NewPasswordHasherWithParams(&argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	hash, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := hasher.Verify("correct horse", hash); err != nil {
		t.Fatalf("verify argon2id: %v", err)
	}
	if err := hasher.Verify("wrong", hash); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if hasher.NeedsRehash(hash) {
		t.Fatal("argon2id hash should not need rehash")
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("old secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if err := hasher.Verify("old secret", string(legacy)); err != nil {
		t.Fatalf("verify bcrypt: %v", err)
	}
	if err := hasher.Verify("nope", string(legacy)); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected bcrypt mismatch, got %v", err)
	}
	if !hasher.NeedsRehash(string(legacy)) {
		t.Fatal("bcrypt hash should need rehash")
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity on empty context")
	}
	ctx := WithIdentity(context.Background(), testIdentity)
	got, ok := IdentityFromContext(ctx)
	if !ok || got != testIdentity {
		t.Fatalf("expected identity round trip, got %+v %v", got, ok)
	}
}
