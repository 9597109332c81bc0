package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationList records access token ids that must no longer be honoured.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationList keeps revoked token ids in process memory until they expire.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationList returns an empty in-memory revocation list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke marks tokenID as revoked for ttl.
func (l *MemoryRevocationList) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, expires := range l.entries {
		if now.After(expires) {
			delete(l.entries, id)
		}
	}
	l.entries[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether tokenID is still revoked.
func (l *MemoryRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expires, ok := l.entries[tokenID]
	if !ok {
		return false, nil
	}
	if l.now().After(expires) {
		delete(l.entries, tokenID)
		return false, nil
	}
	return true, nil
}
