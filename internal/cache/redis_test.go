package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pulse/backend/internal/auth"
)

var _ auth.RevocationList = (*Client)(nil)

func TestRevokedKey(t *testing.T) {
	if got := revokedKey("abc"); got != "pulse:revoked:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestClientSurfacesConnectionErrors(t *testing.T) {
	client := New(Config{Addr: "127.0.0.1:1"}, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err == nil {
		t.Fatal("expected ping against a closed port to fail")
	}
	if _, err := client.IsRevoked(ctx, "jti"); err == nil {
		t.Fatal("expected lookup against a closed port to fail")
	}
	if err := client.Revoke(ctx, "jti", time.Minute); err == nil {
		t.Fatal("expected revoke against a closed port to fail")
	}
	if err := client.Revoke(ctx, "jti", 0); err != nil {
		t.Fatalf("expected zero ttl to be a no-op, got %v", err)
	}
}
