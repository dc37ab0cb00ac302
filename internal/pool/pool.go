// Package pool owns the bounded set of database connections described
// in spec.md §4.4: acquire/release against a fixed pool_size, with
// configurable acquire/idle/lifetime timeouts, and an is_closed()
// status once a graceful shutdown has drained it.
//
// Grounded on the teacher's internal/database/postgres.go DB type,
// which wraps pgxpool.Pool directly for exactly this purpose; the
// Datadog-traced pool constructor is dropped in favour of the plain
// pgxpool constructor (see the design ledger for why the tracing
// stack wasn't carried forward).
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAcquireTimeout is returned by Acquire when no connection becomes
// available within the pool's acquire timeout. Callers that need to
// surface this as a domain error kind match it with errors.Is.
var ErrAcquireTimeout = errors.New("pool: acquire timeout")

// ErrClosed is returned by Acquire once the pool has been closed.
var ErrClosed = errors.New("pool: closed")

// Snapshot is a point-in-time view of pool occupancy, mirroring
// pgxpool.Stat's fields the registry core needs to expose.
type Snapshot struct {
	AcquiredConns    int32
	IdleConns        int32
	MaxConns         int32
	TotalConns       int32
	NewConnsCount    int64
	AcquireCount     int64
	AcquireDuration  time.Duration
	CanceledAcquires int64
}

// Pool wraps a pgxpool.Pool with the registry's acquire-timeout and
// closed-state policy on top.
type Pool struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	closed         atomic.Bool
}

// Open parses cfg into a pgxpool.Config, applies MaxConns/MinConns and
// the idle/lifetime bounds, and opens the pool. It pings once to fail
// fast on unreachable databases.
func Open(ctx context.Context, cfg *Config) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("pool: parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxLifetime
	poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	raw, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pool: open: %w", err)
	}
	if err := raw.Ping(pingCtx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("pool: ping: %w", err)
	}

	return &Pool{
		pool:           raw,
		acquireTimeout: cfg.AcquireTimeout,
	}, nil
}

// Acquire checks out a connection, bounding the wait by the pool's
// configured acquire timeout unless ctx already carries an earlier
// deadline. Acquire on a closed pool returns ErrClosed itself; a
// timed-out wait returns an error wrapping ErrAcquireTimeout.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	acquireCtx := ctx
	if p.acquireTimeout > 0 {
		// WithTimeout keeps ctx's own deadline when that one is earlier.
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	conn, err := p.pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrAcquireTimeout, err)
		}
		return nil, fmt.Errorf("pool: acquire: %w", err)
	}
	return conn, nil
}

// Release returns conn to the pool.
func (p *Pool) Release(conn *pgxpool.Conn) {
	conn.Release()
}

// Stats returns a snapshot of current pool occupancy.
func (p *Pool) Stats() Snapshot {
	s := p.pool.Stat()
	return Snapshot{
		AcquiredConns:    s.AcquiredConns(),
		IdleConns:        s.IdleConns(),
		MaxConns:         s.MaxConns(),
		TotalConns:       s.TotalConns(),
		NewConnsCount:    s.NewConnsCount(),
		AcquireCount:     s.AcquireCount(),
		AcquireDuration:  s.AcquireDuration(),
		CanceledAcquires: s.CanceledAcquireCount(),
	}
}

// IsClosed reports whether Close has drained and closed the pool.
func (p *Pool) IsClosed() bool {
	return p.closed.Load()
}

// Close drains and closes the underlying pool. Safe to call once, and
// safe to race against concurrent Acquire/IsClosed calls from other
// goroutines (e.g. a shutdown goroutine racing in-flight requests).
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.pool.Close()
}

// Raw exposes the underlying pgxpool.Pool for statement execution.
// The registry's DB protocol layer needs direct Query/Exec access that
// a thin acquire/release wrapper has no reason to reproduce.
func (p *Pool) Raw() *pgxpool.Pool {
	return p.pool
}
