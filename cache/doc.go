// Package cache provides a small in-process caching layer for derived,
// expensive-to-recompute values, built around a backend-agnostic capability
// contract and a bounded, recency-tracked in-memory backend.
//
// # Design
//
//   - Contract: Cache[K, V] defines Store/StoreWithTTL/Fetch/Expire and is
//     the sole surface other subsystems depend on. It admits suspending
//     backends (disk, network); each takes a Context where suspension is
//     possible.
//
//   - Storage: Memory keeps a value map plus a parallel key->rank index.
//     The two indices are updated together under one mutex, so no caller
//     can observe a key present in one and absent from the other.
//
//   - Recency: a per-instance counter advances on every touch (Store or
//     successful Fetch) and yields each key's rank. Lower rank = older.
//
//   - Eviction: when an insert would exceed the bound, or the bound is
//     shrunk below the population, the lowest-ranked entries are purged.
//     After every purge the survivors' ranks are renumbered to a dense
//     0..m-1 range and the counter is reset to m, so the counter's
//     magnitude tracks the current population instead of the cumulative
//     operation count.
//
//   - Bound: DefaultMaxSize is 1; SetMaxSize accepts Unbounded or any
//     positive count and rejects everything else. Shrinking purges
//     immediately.
//
//   - Expiry hint: StoreWithTTL accepts a per-entry hint that Memory
//     ignores (no wall-clock expiry in this backend).
//
//   - Loading: Loading wraps any Cache with a LoadFunc that computes
//     misses, coalescing concurrent loads per key.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; plug a Prometheus adapter to export
//     metrics.
//
// # Basic usage
//
//	c, _ := cache.NewMemory[string, []byte](cache.Options[string, []byte]{MaxSize: 64})
//	_ = c.Store(ctx, "a", []byte("1"))
//	if v, err := c.Fetch(ctx, "a"); err == nil {
//	    _ = v // use value
//	}
//	_ = c.Expire("a")
//
// # Changing the bound at runtime
//
//	c, _ := cache.NewMemory[string, string](cache.Options[string, string]{MaxSize: 128})
//	// ... populate ...
//	_ = c.SetMaxSize(16) // purges the 112 least-recently-touched entries now
//	_ = c.SetMaxSize(cache.Unbounded)
//
// # Load-through
//
//	l := cache.NewLoading[string, string](c, func(ctx context.Context, k string) (string, error) {
//	    // e.g. resolve the artifact
//	    return "v:" + k, nil
//	})
//	v, err := l.Fetch(ctx, "key") // computes on miss, coalesced per key
//
// # Thread-safety & complexity
//
// All methods on Memory are safe for concurrent use. Store and Fetch are
// O(1) expected; a purge is O(p log p) in the population, which the
// compaction step keeps proportional to the configured bound.
package cache
