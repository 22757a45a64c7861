package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Unbounded disables the capacity bound: no automatic eviction occurs and
// only explicit Expire removes entries. Do not use Unbounded when the keys
// are under control of a remote entity.
const Unbounded = -1

// DefaultMaxSize is the capacity bound of a freshly constructed Memory
// cache when Options.MaxSize is left zero.
const DefaultMaxSize = 1

// Memory is a bounded, recency-tracked in-memory cache.
//
// It keeps a value map and a parallel key->rank index. Every touch (a
// Store of a key, or a successful Fetch) refreshes the key's recency rank;
// when an insert would push the population past the bound, the
// least-recently-touched entries are purged first. The per-entry TTL hint
// of the contract is accepted but has no effect in this backend.
//
// All methods are safe for concurrent use. A single mutex covers each
// operation in full: every operation touches the shared recency counter,
// so finer-grained locking would buy nothing, and no intermediate state
// (a key present in one index but not the other) is ever observable.
type Memory[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V   // live values
	used map[K]int // recency rank per live key; lower = older
	ctr  int       // rank source; reset by purge compaction
	max  int       // Unbounded or > 0

	opt Options[K, V]
}

// NewMemory constructs a Memory cache with the provided Options.
// Defaults:
//   - MaxSize 0    -> DefaultMaxSize (1)
//   - nil Metrics  -> NoopMetrics
//   - unset Logger -> disabled
func NewMemory[K comparable, V any](opt Options[K, V]) (*Memory[K, V], error) {
	if opt.MaxSize == 0 {
		opt.MaxSize = DefaultMaxSize
	}
	if opt.MaxSize != Unbounded && opt.MaxSize < 0 {
		return nil, ErrInvalidMaxSize
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &Memory[K, V]{
		data: make(map[K]V),
		used: make(map[K]int),
		max:  opt.MaxSize,
		opt:  opt,
	}, nil
}

// ---- Cache[K,V] implementation ----

// Store associates v with k, overwriting any prior value, and marks k as
// touched at the current counter position. If the cache is bounded and
// already full, the least-recently-touched entries are purged first so the
// population never exceeds the bound after the insert.
func (c *Memory[K, V]) Store(ctx context.Context, k K, v V) error {
	return c.StoreWithTTL(ctx, k, v, 0)
}

// StoreWithTTL is Store with an expiry hint. The hint is accepted for
// contract compatibility and ignored: this backend implements no
// wall-clock expiry.
func (c *Memory[K, V]) StoreWithTTL(_ context.Context, k K, v V, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.max != Unbounded && len(c.data) >= c.max {
		// Free slots down to max-1 so the insert below lands exactly
		// at the bound. Overwrites of a resident key take this path
		// too when the cache is full.
		c.purgeOld(len(c.data)-(c.max-1), EvictCapacity)
	}

	// A store is a touch: the key becomes the most recently used.
	// Advancing the counter keeps ranks pairwise distinct, so eviction
	// order never depends on map iteration order.
	c.ctr++
	c.data[k] = v
	c.used[k] = c.ctr

	c.opt.Metrics.Size(len(c.data))
	return nil
}

// Fetch returns the value associated with k and promotes k to
// most-recently-used. This is the sole mechanism by which recency is
// refreshed on read. A miss leaves no residue in either index.
func (c *Memory[K, V]) Fetch(_ context.Context, k K) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, ErrNotFound
	}
	c.ctr++
	c.used[k] = c.ctr
	c.opt.Metrics.Hit()
	return v, nil
}

// Expire removes k from both indices, regardless of its recency rank and
// of the bound. Strict: fails with ErrNotFound if k is absent.
func (c *Memory[K, V]) Expire(k K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[k]
	if !ok {
		return ErrNotFound
	}
	delete(c.data, k)
	delete(c.used, k)
	c.evicted(k, v, EvictExplicit)
	c.opt.Metrics.Size(len(c.data))
	return nil
}

// ---- bound management ----

// MaxSize returns the current capacity bound, or Unbounded.
func (c *Memory[K, V]) MaxSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max
}

// SetMaxSize changes the capacity bound. n must be Unbounded or a positive
// integer; anything else fails with ErrInvalidMaxSize and leaves both the
// bound and the population unchanged. Shrinking the bound below the
// current population purges the overhang immediately, oldest first.
func (c *Memory[K, V]) SetMaxSize(n int) error {
	if n != Unbounded && n <= 0 {
		return ErrInvalidMaxSize
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.max = n
	if c.opt.Logger != nil {
		c.opt.Logger.Debug().Int("max_size", n).Msg("cache: bound changed")
	}
	if c.max != Unbounded && len(c.data) > c.max {
		c.purgeOld(len(c.data)-c.max, EvictResize)
		c.opt.Metrics.Size(len(c.data))
	}
	return nil
}

// Len returns the number of live entries.
func (c *Memory[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// -------------------- internals (mu held) --------------------

// purgeOld removes the n least-recently-touched entries and compacts the
// recency counter.
//
// Compaction renumbers the survivors' ranks to the dense range 0..m-1 in
// their existing relative order and resets the counter to m. Without it
// the counter would grow without limit over the lifetime of a high-churn
// cache; with it, its magnitude stays proportional to the current
// population while relative recency is preserved exactly.
func (c *Memory[K, V]) purgeOld(n int, reason EvictReason) {
	type ranked struct {
		key  K
		rank int
	}
	byAge := make([]ranked, 0, len(c.used))
	for k, r := range c.used {
		byAge = append(byAge, ranked{key: k, rank: r})
	}
	// Ranks are pairwise distinct (every touch advances the counter),
	// so the order is total; a tie would be broken arbitrarily.
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].rank < byAge[j].rank })

	if n > len(byAge) {
		n = len(byAge)
	}
	for _, e := range byAge[:n] {
		v := c.data[e.key]
		delete(c.data, e.key)
		delete(c.used, e.key)
		c.evicted(e.key, v, reason)
	}

	keep := byAge[n:]
	c.ctr = len(keep)
	for i, e := range keep {
		c.used[e.key] = i
	}
}

// evicted records one removal: metrics, optional callback, optional log.
// The callback runs under the lock; keep it lightweight.
func (c *Memory[K, V]) evicted(k K, v V, reason EvictReason) {
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(k, v, reason)
	}
	if c.opt.Logger != nil {
		c.opt.Logger.Debug().
			Str("reason", reason.String()).
			Msg("cache: entry removed")
	}
}

// Compile-time check: Memory satisfies the capability contract.
var _ Cache[string, any] = (*Memory[string, any])(nil)
