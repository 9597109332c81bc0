package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/db"
)

// PostgresSessionStore keeps refresh sessions in the sessions table.
type PostgresSessionStore struct {
	pool db.Pool
}

// NewPostgresSessionStore constructs a session store over pool.
func NewPostgresSessionStore(pool db.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// Save records session and purges the owner's expired sessions in the same statement.
func (s *PostgresSessionStore) Save(ctx context.Context, session auth.Session) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        WITH purged AS (
            DELETE FROM sessions WHERE user_id = $2 AND expires_at < now()
        )
        INSERT INTO sessions (refresh_token, user_id, email, name, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (refresh_token) DO UPDATE
        SET user_id = EXCLUDED.user_id, email = EXCLUDED.email, name = EXCLUDED.name, expires_at = EXCLUDED.expires_at
    `, session.RefreshToken, session.Identity.UserID, session.Identity.Email, session.Identity.Name, session.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Take deletes the session for refreshToken and returns it. Concurrent callers
// racing on one token see at most one success.
func (s *PostgresSessionStore) Take(ctx context.Context, refreshToken string) (auth.Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return auth.Session{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	session := auth.Session{RefreshToken: refreshToken}
	var expiresAt time.Time
	err = conn.QueryRow(ctx, `
        DELETE FROM sessions
        WHERE refresh_token = $1
        RETURNING user_id, email, name, expires_at
    `, refreshToken).Scan(&session.Identity.UserID, &session.Identity.Email, &session.Identity.Name, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("take session: %w", err)
	}

	session.ExpiresAt = expiresAt.UTC()
	return session, nil
}

// Delete removes the session for refreshToken.
func (s *PostgresSessionStore) Delete(ctx context.Context, refreshToken string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

// DeleteForUser removes every session issued to userID.
func (s *PostgresSessionStore) DeleteForUser(ctx context.Context, userID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

var _ auth.SessionStore = (*PostgresSessionStore)(nil)
