package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// ErrPoolClosed is returned by LazyPool after Close has been called.
var ErrPoolClosed = errors.New("db: pool closed")

// Pool abstracts the pgx connection pool to make testing easier.
type Pool interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

// Connect initialises a PostgreSQL connection pool using the provided database URL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return pool, nil
}

// ConnectFunc opens a pool for the given database URL.
type ConnectFunc func(ctx context.Context, databaseURL string) (*pgxpool.Pool, error)

// LazyPool defers pool creation until the first Acquire. Concurrent first callers
// share a single initialization; a failed initialization is retried on the next call.
type LazyPool struct {
	databaseURL string
	connect     ConnectFunc

	group singleflight.Group

	mu     sync.RWMutex
	pool   *pgxpool.Pool
	closed bool
}

// NewLazyPool constructs a LazyPool. A nil connect uses Connect.
func NewLazyPool(databaseURL string, connect ConnectFunc) *LazyPool {
	if connect == nil {
		connect = Connect
	}
	return &LazyPool{databaseURL: databaseURL, connect: connect}
}

// Acquire returns a connection from the underlying pool, creating the pool if needed.
func (p *LazyPool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	pool, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Acquire(ctx)
}

// Get returns the shared pool, initializing it on first use.
func (p *LazyPool) Get(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.RLock()
	pool, closed := p.pool, p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}
	if pool != nil {
		return pool, nil
	}

	v, err, _ := p.group.Do("pool", func() (any, error) {
		p.mu.RLock()
		existing, closed := p.pool, p.closed
		p.mu.RUnlock()
		if closed {
			return nil, ErrPoolClosed
		}
		if existing != nil {
			return existing, nil
		}

		created, err := p.connect(context.WithoutCancel(ctx), p.databaseURL)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			created.Close()
			return nil, ErrPoolClosed
		}
		p.pool = created
		slog.Default().Info("database pool initialised")
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// Initialized reports whether the underlying pool has been created.
func (p *LazyPool) Initialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pool != nil
}

// Close releases the underlying pool if it was created. Subsequent calls to
// Acquire fail with ErrPoolClosed.
func (p *LazyPool) Close() {
	p.mu.Lock()
	pool := p.pool
	p.pool = nil
	p.closed = true
	p.mu.Unlock()

	if pool != nil {
		pool.Close()
	}
}

var _ Pool = (*LazyPool)(nil)
var _ Pool = (*pgxpool.Pool)(nil)
