package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"

	"github.com/pulse/backend/internal/config"
	"github.com/pulse/backend/internal/db"
	"github.com/pulse/backend/internal/handlers"
	"github.com/pulse/backend/internal/httpserver"
	"github.com/pulse/backend/internal/logging"
	"github.com/pulse/backend/internal/middleware"
)

// Run bootstraps the Pulse backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.AppPort))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", cfg.AppPort, err)
	}

	logger.Info("starting http server",
		slog.Int("port", cfg.AppPort),
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("uploads", cfg.ObjectStore.Enabled()),
		slog.Bool("redis", cfg.Redis.Addr != ""),
	)

	srv := httpserver.New(cfg.AppPort, newHandler(deps, logger), logger)
	return srv.Run(ctx, ln)
}

// newHandler builds the full middleware chain around the routes. Metrics wrap
// the mux directly so the matched route pattern is available.
func newHandler(deps *components, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.Handlers)

	var handler http.Handler = deps.Metrics.Instrument(mux)
	handler = middleware.Authenticate(deps.Sessions)(handler)
	return middleware.RequestLogger(logger)(handler)
}

func runMigrations(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel))

	if cfg.StorageDriver == config.StorageMemory {
		return errors.New("migrations require the postgres storage driver")
	}

	command := db.MigrateUp
	if len(args) > 0 && args[0] != "" {
		command = args[0]
	}
	return db.Migrate(cfg.DatabaseURL, command)
}

// runSeed applies the named SQL seed files from the seed directory in one
// transaction, in the order given.
func runSeed(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return errors.New("expected one or more seed names (e.g. dev)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	scripts := make([]string, len(names))
	for i, name := range names {
		contents, err := os.ReadFile(seedPath(cfg.SeedDir, name))
		if err != nil {
			return fmt.Errorf("read seed %s: %w", name, err)
		}
		scripts[i] = string(contents)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i, script := range scripts {
			if _, err := tx.Exec(ctx, script); err != nil {
				return fmt.Errorf("apply seed %s: %w", names[i], err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("applied seeds", slog.Any("seeds", names))
	return nil
}

// seedPath maps a seed name such as "dev" onto dir/dev_seed.sql. Names ending
// in .sql are used as file names unchanged.
func seedPath(dir, name string) string {
	if !strings.HasSuffix(name, ".sql") {
		name += "_seed.sql"
	}
	return filepath.Join(dir, filepath.Base(name))
}
