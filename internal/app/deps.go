package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulse/backend/internal/accounts"
	"github.com/pulse/backend/internal/auth"
	"github.com/pulse/backend/internal/cache"
	"github.com/pulse/backend/internal/config"
	"github.com/pulse/backend/internal/db"
	"github.com/pulse/backend/internal/engagement"
	"github.com/pulse/backend/internal/handlers"
	"github.com/pulse/backend/internal/middleware"
	"github.com/pulse/backend/internal/profiles"
	"github.com/pulse/backend/internal/relationships"
	"github.com/pulse/backend/internal/repositories"
	"github.com/pulse/backend/internal/storage"
	"github.com/pulse/backend/internal/videos"
)

// rateLimiterTTL is how long an idle client's limiter is kept.
const rateLimiterTTL = 10 * time.Minute

type userStore interface {
	repositories.UserRepository
	repositories.RelationshipRepository
}

// components holds everything serve needs, plus the resources to release on exit.
type components struct {
	Handlers handlers.Dependencies
	Sessions *auth.Manager
	Metrics  *middleware.HTTPMetrics

	closers []func()
}

// Close releases pools and clients in reverse order of creation.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, error) {
	c := &components{}
	checks := map[string]handlers.HealthCheck{}

	var (
		users        userStore
		videoRepo    repositories.VideoRepository
		sessionStore auth.SessionStore
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := repositories.NewMemoryStore()
		users, videoRepo = store.Users(), store.Videos()
		sessionStore = auth.NewInMemorySessionStore()
		logger.Warn("using in-memory storage; data will not survive restarts")
	default:
		pool := db.NewLazyPool(cfg.DatabaseURL, db.Connect)
		c.closers = append(c.closers, pool.Close)
		users = repositories.NewPostgresUserRepository(pool)
		videoRepo = repositories.NewPostgresVideoRepository(pool)
		sessionStore = repositories.NewPostgresSessionStore(pool)
		checks["database"] = func(ctx context.Context) error {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}
			defer conn.Release()
			return conn.Ping(ctx)
		}
	}

	var revoked auth.RevocationList
	if cfg.Redis.Addr != "" {
		client := cache.New(cache.Config(cfg.Redis), logger)
		revoked = client
		checks["redis"] = client.Ping
		c.closers = append(c.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("close redis client", slog.Any("error", err))
			}
		})
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	c.Sessions = auth.NewManager(cfg.AccessTTL, cfg.RefreshTTL, sessionStore, issuer, revoked)

	var (
		images  accounts.ImageStore
		uploads handlers.UploadAuthorizer
	)
	if cfg.ObjectStore.Enabled() {
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("object store: %w", err)
		}
		images, uploads = s3Store, s3Store
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = middleware.NewHTTPMetrics(registry)

	c.Handlers = handlers.Dependencies{
		Accounts:      accounts.NewService(users, auth.NewPasswordHasher(), images, c.Sessions),
		Sessions:      c.Sessions,
		Relationships: relationships.NewService(users),
		Engagement:    engagement.NewService(videoRepo, users),
		Profiles:      profiles.NewService(users, videoRepo),
		Videos:        videos.NewCatalog(videoRepo, users, cfg.FeedLimit),
		Uploads:       uploads,
		AuthLimiter: middleware.NewIPRateLimiter(
			cfg.AuthRateLimit.Requests, cfg.AuthRateLimit.Window, cfg.AuthRateLimit.Burst, rateLimiterTTL,
		),
		HealthCheck: checks,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return c, nil
}
