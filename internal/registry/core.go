// Package registry orchestrates the canonicalise -> cache -> gate ->
// database pipeline: Core.RegisterObject and Core.RegisterBatch are
// the two public operations a content-addressed JSON registry exposes,
// per spec.md §4.6.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/birbnest/jsonregistry/internal/canon"
	"github.com/birbnest/jsonregistry/internal/coalesce"
	"github.com/birbnest/jsonregistry/internal/lrucache"
	"github.com/birbnest/jsonregistry/internal/pool"
)

// Core is the registry's orchestration layer: one per configured
// table/connection, safe for concurrent use from multiple goroutines.
type Core struct {
	cfg   *Config
	pool  *pool.Pool
	cache *lrucache.Cache
	gate  *coalesce.Gate
	stmts *statements
}

// New validates cfg's identifiers, opens the pool, and constructs the
// cache and gate. It does not create the schema; the caller is
// responsible for provisioning the table ahead of time.
func New(ctx context.Context, cfg *Config) (*Core, error) {
	if err := cfg.validateIdentifiers(); err != nil {
		return nil, err
	}

	p, err := pool.Open(ctx, cfg.Pool)
	if err != nil {
		return nil, newDatabaseError(SubConnection, "failed to open connection pool", errors.New(scrubConnString(err.Error())))
	}

	return &Core{
		cfg:   cfg,
		pool:  p,
		cache: lrucache.New(cfg.CacheSize),
		gate:  coalesce.New(),
		stmts: buildStatements(cfg),
	}, nil
}

// Close drains the connection pool. Safe to call once.
func (c *Core) Close() {
	c.pool.Close()
}

// PoolSize returns the pool's configured maximum connection count.
func (c *Core) PoolSize() int32 { return c.pool.Stats().MaxConns }

// IdleConnections returns the pool's current idle connection count.
func (c *Core) IdleConnections() int32 { return c.pool.Stats().IdleConns }

// IsClosed reports whether Close has drained the pool.
func (c *Core) IsClosed() bool { return c.pool.IsClosed() }

// Raw exposes the underlying pgxpool.Pool for callers that need direct
// database access outside the registration pipeline (schema migrations,
// diagnostics, tests).
func (c *Core) Raw() *pgxpool.Pool { return c.pool.Raw() }

// CacheHits returns the cumulative number of cache hits.
func (c *Core) CacheHits() uint64 { return c.cache.Hits() }

// CacheMisses returns the cumulative number of cache misses.
func (c *Core) CacheMisses() uint64 { return c.cache.Misses() }

// CacheHitRate returns hits*100/(hits+misses), or 0 with no lookups yet.
func (c *Core) CacheHitRate() float64 { return c.cache.HitRate() }

// RegisterObject canonicalises value, resolves it to a stable id
// (serving from cache when possible, coalescing concurrent misses for
// the same fingerprint, and falling back to the database otherwise),
// and returns that id.
func (c *Core) RegisterObject(ctx context.Context, value []byte) (int32, error) {
	key, err := canon.Canonicalize(value)
	if err != nil {
		return 0, newError(KindInvalidJSON, err.Error(), err)
	}
	k := string(key)

	if id, ok := c.cache.Get(k); ok {
		return id, nil
	}

	id, err := coalesce.Do(ctx, c.gate, k, func() (int32, error) {
		return c.resolveOne(context.Background(), key)
	})
	if err != nil {
		return 0, classifyGateError(err)
	}

	c.cache.Put(k, id)
	return id, nil
}

// resolveOne is the single-flight producer for one canonical key: it
// acquires a connection, runs Lookup, and falls back to Insert on a
// miss. It runs with a background context so that it always completes
// once started, independent of any individual caller's context, per
// the cancellation policy in spec.md §5 ("the single-flight producer
// continues until completion so that coalesced peers are not
// abandoned").
func (c *Core) resolveOne(ctx context.Context, key []byte) (int32, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return 0, classifyPoolError(err)
	}
	defer c.pool.Release(conn)

	var id int32
	err = conn.QueryRow(ctx, c.stmts.lookup, key).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to insert
	default:
		return 0, newDatabaseError(SubQuery, "lookup failed", err)
	}

	if err := conn.QueryRow(ctx, c.stmts.insert, key).Scan(&id); err != nil {
		return 0, newDatabaseError(SubConstraint, "insert failed", err)
	}
	return id, nil
}

// RegisterBatch canonicalises every value, serves cache hits directly,
// deduplicates the remaining misses by canonical key (preserving first
// occurrence order), and resolves each distinct miss through the
// single-flight gate using one batch-insert round-trip per chunk.
// Output preserves input order: result[i] is always the id for
// values[i].
func (c *Core) RegisterBatch(ctx context.Context, values [][]byte) ([]int32, error) {
	ids := make([]int32, len(values))
	missPositions := make(map[string][]int)
	var missOrder []string

	for i, v := range values {
		key, err := canon.Canonicalize(v)
		if err != nil {
			return nil, newError(KindInvalidJSON, fmt.Sprintf("position %d: %v", i, err), err)
		}
		k := string(key)

		if id, ok := c.cache.Get(k); ok {
			ids[i] = id
			continue
		}
		if _, seen := missPositions[k]; !seen {
			missOrder = append(missOrder, k)
		}
		missPositions[k] = append(missPositions[k], i)
	}

	batchSize := c.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(missOrder); start += batchSize {
		end := start + batchSize
		if end > len(missOrder) {
			end = len(missOrder)
		}
		chunk := missOrder[start:end]

		resolved, err := c.resolveChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}

		for k, id := range resolved {
			c.cache.Put(k, id)
			for _, pos := range missPositions[k] {
				ids[pos] = id
			}
		}
	}

	return ids, nil
}

// resolveChunk runs one batch-insert round-trip for chunk's distinct
// keys through the gate, keyed on the concatenation of those keys so
// that concurrent callers submitting the exact same chunk share one
// round-trip; callers whose chunks merely overlap still each resolve
// correctly, since the gate key only affects deduplication, not
// correctness.
func (c *Core) resolveChunk(ctx context.Context, chunk []string) (map[string]int32, error) {
	gateKey := strings.Join(chunk, "\x00")

	resolved, err := coalesce.Do(ctx, c.gate, gateKey, func() (map[string]int32, error) {
		return c.batchResolve(context.Background(), chunk)
	})
	if err != nil {
		return nil, classifyGateError(err)
	}
	return resolved, nil
}

// batchResolve acquires one connection and issues the batch-insert
// statement for chunk, returning canonical-key -> id.
func (c *Core) batchResolve(ctx context.Context, chunk []string) (map[string]int32, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, classifyPoolError(err)
	}
	defer c.pool.Release(conn)

	rows, err := conn.Query(ctx, c.stmts.batchInsert, chunk)
	if err != nil {
		return nil, newDatabaseError(SubConstraint, "batch insert failed", err)
	}
	defer rows.Close()

	result := make(map[string]int32, len(chunk))
	for rows.Next() {
		var position int64
		var id int32
		if err := rows.Scan(&position, &id); err != nil {
			return nil, newDatabaseError(SubQuery, "batch insert scan failed", err)
		}
		result[chunk[position-1]] = id
	}
	if err := rows.Err(); err != nil {
		return nil, newDatabaseError(SubConstraint, "batch insert row iteration failed", err)
	}
	return result, nil
}

// classifyGateError turns a gate.Do failure into a registry Error: a
// context cancellation/deadline becomes KindCancelled, and anything
// already a *Error (the producer's own classified failure, shared
// bit-for-bit with every other waiter on that key) passes through.
func classifyGateError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindCancelled, "registration cancelled before completion", err)
	}
	return err
}
