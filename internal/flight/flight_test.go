package flight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// All concurrent callers for one key share a single execution of fn.
func TestGroup_CoalescesSameKey(t *testing.T) {
	t.Parallel()

	var g Group[string, string]
	var calls int64

	const n = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := g.Do(context.Background(), "k", func() (string, error) {
				atomic.AddInt64(&calls, 1)
				time.Sleep(50 * time.Millisecond) // wide window so every caller joins this flight
				return "shared", nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			if v != "shared" {
				t.Errorf("Do = %q", v)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got > 1 {
		t.Fatalf("fn ran %d times, want a single shared flight", got)
	}
}

// Distinct keys do not share flights.
func TestGroup_DistinctKeysIndependent(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	a, err := g.Do(context.Background(), "a", func() (int, error) { return 1, nil })
	if err != nil || a != 1 {
		t.Fatalf("Do a = %d, %v", a, err)
	}
	b, err := g.Do(context.Background(), "b", func() (int, error) { return 2, nil })
	if err != nil || b != 2 {
		t.Fatalf("Do b = %d, %v", b, err)
	}
}

// The leader's error is shared with followers, and the flight marker is
// cleared so a later call reruns fn.
func TestGroup_ErrorSharedThenRetried(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	boom := errors.New("boom")
	var calls int64

	if _, err := g.Do(context.Background(), "k", func() (int, error) {
		atomic.AddInt64(&calls, 1)
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Do: err = %v, want boom", err)
	}

	v, err := g.Do(context.Background(), "k", func() (int, error) {
		atomic.AddInt64(&calls, 1)
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Fatalf("Do retry = %d, %v", v, err)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("fn ran %d times, want 2", got)
	}
}

// Cancelling a follower's context unblocks only that follower; the leader
// still completes and publishes its result.
func TestGroup_FollowerCancellation(t *testing.T) {
	t.Parallel()

	var g Group[string, string]
	release := make(chan struct{})
	leaderIn := make(chan struct{})

	go func() {
		_, _ = g.Do(context.Background(), "k", func() (string, error) {
			close(leaderIn)
			<-release
			return "done", nil
		})
	}()
	<-leaderIn

	ctx, cancel := context.WithCancel(context.Background())
	followerErr := make(chan error, 1)
	go func() {
		_, err := g.Do(ctx, "k", func() (string, error) { return "", nil })
		followerErr <- err
	}()

	cancel()
	select {
	case err := <-followerErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("follower err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled follower did not return")
	}

	// Leader is unaffected: release it and verify a fresh call sees the
	// flight cleaned up.
	close(release)
	v, err := g.Do(context.Background(), "k", func() (string, error) { return "fresh", nil })
	if err != nil {
		t.Fatalf("Do after leader finished: %v", err)
	}
	if v != "done" && v != "fresh" {
		t.Fatalf("Do = %q, want the leader's or a fresh result", v)
	}
}
