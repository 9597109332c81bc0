// Package cache wraps the Redis client used for short-lived shared state.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "pulse:revoked:"

// Config describes how to reach Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client is a thin wrapper over a go-redis client.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// New constructs a client. The connection is established lazily by go-redis.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return &Client{rdb: rdb, logger: logger.With(slog.String("component", "redis"), slog.String("addr", cfg.Addr))}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Revoke marks tokenID as revoked for ttl.
func (c *Client) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		c.logger.Error("failed to record revoked token", slog.Any("error", err))
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (c *Client) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := c.rdb.Get(ctx, revokedKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	return true, nil
}

func revokedKey(tokenID string) string {
	return revokedPrefix + tokenID
}
