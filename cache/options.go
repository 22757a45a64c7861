package cache

import "github.com/rs/zerolog"

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity — purged to keep a Store within the capacity bound.
	EvictCapacity EvictReason = iota
	// EvictResize — purged because SetMaxSize shrank the bound below the
	// current population.
	EvictResize
	// EvictExplicit — removed by an explicit Expire call.
	EvictExplicit
)

// String returns a stable label for the reason (used in logs and metrics).
func (r EvictReason) String() string {
	switch r {
	case EvictResize:
		return "resize"
	case EvictExplicit:
		return "explicit"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Options configures a Memory cache. Zero values are safe; defaults are
// applied in NewMemory:
//   - MaxSize 0   => DefaultMaxSize (1)
//   - nil Metrics => NoopMetrics
type Options[K comparable, V any] struct {
	// MaxSize is the capacity bound: Unbounded, or a positive entry
	// count. The zero value means DefaultMaxSize. The bound can be
	// changed later via SetMaxSize.
	MaxSize int

	// OnEvict is called for every removal (purge or explicit Expire)
	// under the cache lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)

	// Metrics receives Hit/Miss/Evict/Size signals. Nil => NoopMetrics.
	// Plug a Prometheus adapter (metrics/prom) to export them.
	Metrics Metrics

	// Logger, when set, receives debug events for evictions and bound
	// changes. Nil disables logging.
	Logger *zerolog.Logger
}
