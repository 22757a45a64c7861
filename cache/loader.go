package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jabbercat/lrucache/internal/flight"
)

// ErrNoLoader is returned by Loading.Fetch when no LoadFunc was provided.
var ErrNoLoader = errors.New("cache: no LoadFunc provided")

// LoadFunc computes the value for a key that is not in the cache.
type LoadFunc[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Loading wraps a Cache with load-through behavior: Fetch computes missing
// values via the LoadFunc and stores them, coalescing concurrent loads for
// the same key so the computation runs at most once. Store, StoreWithTTL
// and Expire delegate to the wrapped backend unchanged.
//
// Loading itself satisfies the Cache contract, so it can be substituted
// wherever a backend is expected.
type Loading[K comparable, V any] struct {
	backend Cache[K, V]
	load    LoadFunc[K, V]
	sf      flight.Group[K, V]
}

// NewLoading wraps backend with load-through behavior.
func NewLoading[K comparable, V any](backend Cache[K, V], load LoadFunc[K, V]) *Loading[K, V] {
	return &Loading[K, V]{backend: backend, load: load}
}

// Fetch returns the cached value for k, computing and storing it on miss.
// Concurrent misses for the same key share a single load. Errors other
// than a miss from the backend are returned as-is.
func (l *Loading[K, V]) Fetch(ctx context.Context, k K) (V, error) {
	v, err := l.backend.Fetch(ctx, k)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		var zero V
		return zero, err
	}
	if l.load == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return l.sf.Do(ctx, k, func() (V, error) {
		// Another flight may have stored the value while we queued.
		if v, err := l.backend.Fetch(ctx, k); err == nil {
			return v, nil
		}
		v, err := l.load(ctx, k)
		if err != nil {
			var zero V
			return zero, err
		}
		if err := l.backend.Store(ctx, k, v); err != nil {
			var zero V
			return zero, err
		}
		return v, nil
	})
}

// Store delegates to the wrapped backend.
func (l *Loading[K, V]) Store(ctx context.Context, k K, v V) error {
	return l.backend.Store(ctx, k, v)
}

// StoreWithTTL delegates to the wrapped backend.
func (l *Loading[K, V]) StoreWithTTL(ctx context.Context, k K, v V, ttl time.Duration) error {
	return l.backend.StoreWithTTL(ctx, k, v, ttl)
}

// Expire delegates to the wrapped backend.
func (l *Loading[K, V]) Expire(k K) error {
	return l.backend.Expire(k)
}

var _ Cache[string, any] = (*Loading[string, any])(nil)
