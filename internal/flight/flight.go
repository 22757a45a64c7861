// Package flight coalesces concurrent calls that compute the same key.
package flight

import (
	"context"
	"sync"
)

// call carries the shared outcome of one in-flight computation.
// val and err are published before done is closed, so any read that
// happens after <-done observes the final values.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Group ensures that, per key, at most one invocation of the supplied
// function runs at a time. The first caller for a key becomes the leader
// and runs the function; concurrent callers for the same key wait for the
// leader's result instead of recomputing it.
type Group[K comparable, V any] struct {
	mu       sync.Mutex
	inflight map[K]*call[V]
}

// Do returns the result of fn for key, running fn at most once among
// concurrent callers of the same key.
//
// A follower whose ctx is cancelled returns ctx.Err() and stops waiting;
// the leader's fn keeps running regardless. Cancellation of the underlying
// work itself must be handled inside fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[K]*call[V])
	}
	if c, ok := g.inflight[key]; ok {
		// Follower: wait for the leader, respecting ctx.
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	c := &call[V]{done: make(chan struct{})}
	g.inflight[key] = c
	g.mu.Unlock()

	// Leader: run fn outside the lock, publish, then clear the marker so
	// later calls start a fresh flight.
	c.val, c.err = fn()
	close(c.done)

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()

	return c.val, c.err
}
