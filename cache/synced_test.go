package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func newTestSynced(t *testing.T) *Synced {
	t.Helper()
	s, err := NewSynced(Options{
		Capacity:    64,
		EntrySize:   8,
		KeySize:     4,
		KeyToNumber: ident,
	})
	if err != nil {
		t.Fatalf("NewSynced: %v", err)
	}
	t.Cleanup(s.Destroy)
	return s
}

// Synced must expose the same semantics as the bare cache.
func TestSynced_Basic(t *testing.T) {
	t.Parallel()

	s := newTestSynced(t)
	v := make([]byte, 8)
	binary.LittleEndian.PutUint64(v, 11)

	if s.Add(b4(1), v) == nil {
		t.Fatal("Add must succeed")
	}
	if s.Add(b4(1), v) != nil {
		t.Fatal("duplicate Add must fail")
	}

	dst := make([]byte, 8)
	if s.Lookup(b4(1), dst) == nil || binary.LittleEndian.Uint64(dst) != 11 {
		t.Fatal("Lookup must copy the payload out")
	}

	p := s.Lookup(b4(1), nil)
	if err := s.DeleteByKey(b4(1)); err != ErrLocked {
		t.Fatalf("want ErrLocked, got %v", err)
	}
	if err := s.Unlock(p); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := s.DeleteEntry(p); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if s.Len() != 0 || s.Cap() != 64 {
		t.Fatalf("Len=%d Cap=%d", s.Len(), s.Cap())
	}
}

// Stats counters move with hits, misses and evictions.
func TestSynced_Stats(t *testing.T) {
	t.Parallel()

	s, err := NewSynced(Options{
		Capacity:    2,
		EntrySize:   4,
		KeySize:     4,
		KeyToNumber: ident,
	})
	if err != nil {
		t.Fatalf("NewSynced: %v", err)
	}
	t.Cleanup(s.Destroy)

	dst := make([]byte, 4)
	s.Add(b4(1), b4(1))
	s.Add(b4(2), b4(2))
	s.Lookup(b4(1), dst) // hit
	s.Lookup(b4(9), dst) // miss
	s.Add(b4(3), b4(3))  // evicts key 2

	hits, misses, evicts := s.Stats()
	if hits != 1 || misses != 1 || evicts != 1 {
		t.Fatalf("Stats want (1,1,1), got (%d,%d,%d)", hits, misses, evicts)
	}
}

// Concurrent Fetch calls for the same key run the loader at most once;
// subsequent calls are cache hits.
func TestSynced_Fetch_Singleflight(t *testing.T) {
	var calls int64

	s := newTestSynced(t)
	load := func(_ context.Context, key []byte) ([]byte, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(5 * time.Millisecond) // simulate I/O
		v := make([]byte, 8)
		binary.LittleEndian.PutUint64(v, uint64(ident(key))*10)
		return v, nil
	}

	const N = 64
	var g errgroup.Group
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < N; i++ {
		g.Go(func() error {
			v, err := s.Fetch(ctx, b4(7), load)
			if err != nil {
				return err
			}
			if got := binary.LittleEndian.Uint64(v); got != 70 {
				return fmt.Errorf("got %d", got)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}

	if v, err := s.Fetch(context.Background(), b4(7), load); err != nil || binary.LittleEndian.Uint64(v) != 70 {
		t.Fatalf("second Fetch failed: v=%v err=%v", v, err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("second Fetch must be a cache hit, loader ran %d times", got)
	}
}

// A failing loader propagates its error and caches nothing.
func TestSynced_Fetch_LoaderError(t *testing.T) {
	t.Parallel()

	s := newTestSynced(t)
	wantErr := fmt.Errorf("backend down")
	if _, err := s.Fetch(context.Background(), b4(1), func(context.Context, []byte) ([]byte, error) {
		return nil, wantErr
	}); err != wantErr {
		t.Fatalf("want loader error, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("failed load must cache nothing, Len=%d", s.Len())
	}
}
