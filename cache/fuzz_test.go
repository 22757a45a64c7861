//go:build go1.18

package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// Fuzz basic Store/Fetch/Expire semantics under arbitrary string inputs.
// Guards against panics and ensures the index invariants hold after every
// step. Key/value lengths are capped to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants we check).
func FuzzMemory_StoreFetchExpire(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "", uint8(4))
	f.Add("a", "1", uint8(1))
	f.Add("b", "2", uint8(2))
	f.Add("αβγ", "δ", uint8(3))
	f.Add("emoji🙂", "🙂🙂", uint8(8))
	f.Add("long", strings.Repeat("x", 1024), uint8(16))

	f.Fuzz(func(t *testing.T, k, v string, size uint8) {
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}
		maxSize := int(size%16) + 1

		ctx := context.Background()
		c, err := NewMemory[string, string](Options[string, string]{MaxSize: maxSize})
		if err != nil {
			t.Fatalf("NewMemory: %v", err)
		}

		// Store -> Fetch must return the same value.
		if err := c.Store(ctx, k, v); err != nil {
			t.Fatalf("Store: %v", err)
		}
		got, err := c.Fetch(ctx, k)
		if err != nil || got != v {
			t.Fatalf("after Store/Fetch: want %q, got %q err=%v", v, got, err)
		}
		checkIndexes(t, c)

		// Overwrite must replace the value in place.
		if err := c.Store(ctx, k, v+"*"); err != nil {
			t.Fatalf("overwrite Store: %v", err)
		}
		if got, err := c.Fetch(ctx, k); err != nil || got != v+"*" {
			t.Fatalf("after overwrite: want %q, got %q err=%v", v+"*", got, err)
		}
		checkIndexes(t, c)

		// Fill past the bound; the population must never exceed it and
		// no ghost keys may appear.
		for i := 0; i < maxSize+3; i++ {
			if err := c.Store(ctx, k+"/"+strings.Repeat("x", i), v); err != nil {
				t.Fatalf("fill Store: %v", err)
			}
			checkIndexes(t, c)
		}
		if got := c.Len(); got > maxSize {
			t.Fatalf("Len %d exceeds bound %d", got, maxSize)
		}

		// Expire must delete exactly once; the second call is a miss.
		filler := k + "/" + strings.Repeat("x", maxSize+2)
		if err := c.Expire(filler); err != nil {
			t.Fatalf("Expire resident key: %v", err)
		}
		if err := c.Expire(filler); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expire absent key: err = %v, want ErrNotFound", err)
		}
		if _, err := c.Fetch(ctx, filler); !errors.Is(err, ErrNotFound) {
			t.Fatalf("key must be absent after Expire, got err = %v", err)
		}
		checkIndexes(t, c)
	})
}
