package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrTokenRevoked indicates the access token was explicitly revoked by logout.
	ErrTokenRevoked = errors.New("access token revoked")
)

// SessionStore persists issued refresh tokens so they can survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Take removes and returns a session so each refresh token is redeemed once.
	Take(ctx context.Context, refreshToken string) (Session, error)
	Delete(ctx context.Context, refreshToken string) error
	DeleteForUser(ctx context.Context, userID string) error
}

// Session represents a refresh token issued to a user.
type Session struct {
	RefreshToken string
	Identity     models.Identity
	ExpiresAt    time.Time
}

// Manager manages the lifecycle of issued session tokens backed by a persistent store.
type Manager struct {
	accessTTL  time.Duration
	refreshTTL time.Duration

	store   SessionStore
	tokens  *TokenIssuer
	revoked RevocationList

	NowFunc func() time.Time
}

// NewManager constructs a Manager that signs access tokens with tokens, keeps
// refresh tokens in store and consults revoked when resolving access tokens.
func NewManager(accessTTL, refreshTTL time.Duration, store SessionStore, tokens *TokenIssuer, revoked RevocationList) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if tokens == nil {
		panic("auth: token issuer must not be nil")
	}
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &Manager{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		tokens:     tokens,
		revoked:    revoked,
		NowFunc:    time.Now,
	}
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc().UTC()
	}
	return time.Now().UTC()
}

// Issue creates a new pair of access and refresh tokens for the provided identity.
func (m *Manager) Issue(ctx context.Context, identity models.Identity) (models.SessionTokens, error) {
	if identity.UserID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()
	accessToken, err := m.tokens.Sign(identity, now, m.accessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, Session{
		RefreshToken: refreshToken,
		Identity:     identity,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new session token pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	session, err := m.store.Take(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if m.now().After(session.ExpiresAt) {
		return models.SessionTokens{}, ErrRefreshTokenExpired
	}

	return m.Issue(ctx, session.Identity)
}

// Resolve verifies an access token and returns the identity it was issued to.
func (m *Manager) Resolve(ctx context.Context, accessToken string) (models.Identity, error) {
	claims, err := m.tokens.Parse(accessToken, m.now())
	if err != nil {
		return models.Identity{}, err
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return models.Identity{}, ErrTokenRevoked
	}

	return claims.Identity(), nil
}

// Logout revokes the access token until it would have expired and drops the refresh token.
func (m *Manager) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		claims, err := m.tokens.Parse(accessToken, m.now())
		if err == nil {
			ttl := claims.ExpiresAt.Time.Sub(m.now())
			if ttl > 0 {
				if err := m.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
					return fmt.Errorf("revoke access token: %w", err)
				}
			}
		}
	}

	m.Revoke(ctx, refreshToken)
	return nil
}

// Revoke removes the provided refresh token from the active session store.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	_ = m.store.Delete(ctx, refreshToken)
}

// RevokeAll drops every refresh token issued to the user.
func (m *Manager) RevokeAll(ctx context.Context, userID string) {
	if err := m.store.DeleteForUser(ctx, userID); err != nil {
		logging.FromContext(ctx).Warn("failed to revoke user sessions", slog.String("user_id", userID), slog.Any("error", err))
	}
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
