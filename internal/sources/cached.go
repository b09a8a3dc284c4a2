package sources

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"rewards/internal/cache"
	"rewards/internal/core"
	"rewards/internal/log"
)

const snapshotKey = "transactions"

// sharedFetchTimeout bounds an upstream call that outlives the caller that
// started it.
const sharedFetchTimeout = 30 * time.Second

// CachedProvider wraps a slow provider. Concurrent fetches share one
// upstream call and, with a positive TTL, successful snapshots are reused
// until they expire. Failures are never cached.
type CachedProvider struct {
	next   TransactionProvider
	cache  *cache.LRUCache[[]core.Transaction]
	group  singleflight.Group
	logger *log.Logger

	// gen counts invalidations. A fetch only fills the cache when no
	// invalidation happened since it started.
	mu  sync.Mutex
	gen uint64
}

var _ TransactionProvider = (*CachedProvider)(nil)

// NewCachedProvider returns next wrapped in a snapshot cache. A ttl of zero
// keeps request collapsing but disables reuse.
func NewCachedProvider(next TransactionProvider, ttl time.Duration, logger *log.Logger) *CachedProvider {
	p := &CachedProvider{
		next:   next,
		logger: logger.WithComponent(log.ComponentCache),
	}
	if ttl > 0 {
		p.cache = cache.NewLRUCache[[]core.Transaction](1, ttl)
	}
	return p
}

// Cache exposes the snapshot cache for registration with a cache.Manager.
// It is nil when caching is disabled.
func (p *CachedProvider) Cache() *cache.LRUCache[[]core.Transaction] {
	return p.cache
}

// FetchTransactions returns the cached snapshot or joins the upstream call
// for the current generation. The shared call is detached from any single
// caller, so one caller giving up does not fail the others.
func (p *CachedProvider) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	if p.cache != nil {
		if txs, ok := p.cache.Get(snapshotKey); ok {
			p.logger.DebugContext(ctx, "Transaction snapshot served from cache", log.FieldFetched, len(txs))
			return slices.Clone(txs), nil
		}
	}

	gen := p.generation()
	key := fmt.Sprintf("%s:%d", snapshotKey, gen)
	ch := p.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		txs, err := p.next.FetchTransactions(fetchCtx)
		if err != nil {
			return nil, err
		}
		p.store(gen, txs)
		return txs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.logger.DebugContext(ctx, "Transaction fetch shared with a concurrent caller")
		}
		return slices.Clone(res.Val.([]core.Transaction)), nil
	}
}

func (p *CachedProvider) generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// store caches txs unless the snapshot was invalidated after gen was read.
func (p *CachedProvider) store(gen uint64, txs []core.Transaction) {
	if p.cache == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		p.logger.Debug("Dropping snapshot fetched before invalidation", log.FieldFetched, len(txs))
		return
	}
	p.cache.Set(snapshotKey, txs)
}

// Invalidate drops the cached snapshot so the next fetch goes upstream.
// Fetches already in flight will not repopulate the cache.
func (p *CachedProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	if p.cache != nil {
		p.cache.Clear()
	}
}

// Ping forwards to the wrapped provider when it supports health checks.
func (p *CachedProvider) Ping(ctx context.Context) error {
	if hc, ok := p.next.(HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}
