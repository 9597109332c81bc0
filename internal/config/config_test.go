package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080 got %d", cfg.AppPort)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("expected postgres driver got %q", cfg.StorageDriver)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl %s", cfg.AccessTTL)
	}
	if cfg.ObjectStore.Enabled() {
		t.Fatal("expected object store to be disabled without a bucket")
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PULSE_PORT", "9090")
	t.Setenv("PULSE_STORAGE_DRIVER", "MEMORY")
	t.Setenv("PULSE_REFRESH_TOKEN_TTL", "2h")
	t.Setenv("PULSE_S3_BUCKET", "media")
	t.Setenv("PULSE_S3_PATH_STYLE", "true")
	t.Setenv("PULSE_AUTH_RATE_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Fatalf("expected port 9090 got %d", cfg.AppPort)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("expected memory driver got %q", cfg.StorageDriver)
	}
	if cfg.RefreshTTL != 2*time.Hour {
		t.Fatalf("expected refresh ttl 2h got %s", cfg.RefreshTTL)
	}
	if !cfg.ObjectStore.Enabled() || !cfg.ObjectStore.UsePathStyle {
		t.Fatalf("expected object store overrides, got %+v", cfg.ObjectStore)
	}
	if cfg.AuthRateLimit.Requests != 10 {
		t.Fatalf("expected invalid int to fall back to default, got %d", cfg.AuthRateLimit.Requests)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PULSE_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PULSE_LOG_LEVEL", "")
	os.Unsetenv("PULSE_LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level from .env, got %q", cfg.LogLevel)
	}
	os.Unsetenv("PULSE_LOG_LEVEL")
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("PULSE_STORAGE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver to fail")
	}

	t.Setenv("PULSE_STORAGE_DRIVER", "memory")
	t.Setenv("PULSE_JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("expected short secret to fail")
	}
}
