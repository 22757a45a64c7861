package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Fetch (and by Expire on this package's strict
// backends) when no value is currently associated with the key — including
// keys that were evicted or explicitly expired.
var ErrNotFound = errors.New("cache: key not found")

// ErrInvalidMaxSize is returned by SetMaxSize for a value that is neither
// Unbounded nor a positive integer.
var ErrInvalidMaxSize = errors.New("cache: max size must be Unbounded or a positive integer")

// Cache is the capability contract every backend must satisfy, independent
// of backing strategy (in-memory, disk, remote). Downstream code depends
// only on this interface.
//
// Store and Fetch take a Context because a backend may suspend (network or
// disk I/O); the in-memory backend in this package never does. A suspending
// backend must keep each state transition atomic: either the operation
// fully completes and the backend's invariants hold, or it has no effect
// at all.
type Cache[K comparable, V any] interface {
	// Store associates v with k, overwriting any prior value.
	// No failure is mandated at this layer; I/O-backed backends signal
	// their own errors.
	Store(ctx context.Context, k K, v V) error

	// StoreWithTTL is Store with a per-entry expiry hint. The hint is
	// backend-defined advice about when the entry may be dropped; a
	// backend is free to ignore it. A non-positive ttl means no hint.
	StoreWithTTL(ctx context.Context, k K, v V, ttl time.Duration) error

	// Fetch returns the value associated with k.
	// Fails with ErrNotFound if no value is currently associated with k.
	Fetch(ctx context.Context, k K) (V, error)

	// Expire unconditionally removes the entry associated with k,
	// regardless of its recency and of any capacity bound. Removal
	// involves no suspension, hence no Context. Backends in this
	// package are strict: Expire on an absent key fails with
	// ErrNotFound.
	Expire(k K) error
}
