package cache

import (
	"context"
	"sync"

	"github.com/zhaowynn/slabcache/internal/singleflight"
	"github.com/zhaowynn/slabcache/internal/util"
)

// Synced wraps a Cache with a mutex so one instance can be shared across
// goroutines. Each exported method is one critical section: find,
// pin-count mutation and list splice happen as a unit.
//
// Pinned slot views returned by Lookup/Add remain valid across the
// unlock of the mutex (slot addresses are stable and pinned entries
// cannot be evicted), but reading or writing their bytes while other
// goroutines mutate the cache is the caller's race to manage. Prefer the
// copy-out forms (non-nil dst) or Fetch when sharing.
type Synced struct {
	mu sync.Mutex
	c  *Cache

	sf singleflight.Group

	// Hot counters on separate cache lines to avoid false sharing.
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// NewSynced constructs a mutex-guarded cache from opt. The configured
// Metrics hook is retained; Synced feeds its own counters in front of it.
func NewSynced(opt Options) (*Synced, error) {
	s := &Synced{}

	inner := opt.Metrics
	if inner == nil {
		inner = NoopMetrics{}
	}
	opt.Metrics = &countingMetrics{s: s, next: inner}

	c, err := New(opt)
	if err != nil {
		return nil, err
	}
	s.c = c
	return s, nil
}

// Lookup behaves like Cache.Lookup under the lock.
func (s *Synced) Lookup(key, dst []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Lookup(key, dst)
}

// Add behaves like Cache.Add under the lock.
func (s *Synced) Add(key, src []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Add(key, src)
}

// DeleteByKey behaves like Cache.DeleteByKey under the lock.
func (s *Synced) DeleteByKey(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteByKey(key)
}

// DeleteEntry behaves like Cache.DeleteEntry under the lock.
func (s *Synced) DeleteEntry(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteEntry(payload)
}

// Unlock behaves like Cache.Unlock under the lock.
func (s *Synced) Unlock(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Unlock(payload)
}

// Clean behaves like Cache.Clean under the lock.
func (s *Synced) Clean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Clean()
}

// Destroy behaves like Cache.Destroy under the lock.
func (s *Synced) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Destroy()
}

// Len returns the current number of live entries.
func (s *Synced) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Len()
}

// Cap returns the fixed capacity.
func (s *Synced) Cap() int { return s.c.Cap() }

// Stats returns the hit, miss and eviction counts observed so far.
func (s *Synced) Stats() (hits, misses int64, evicts uint64) {
	return s.hits.Load(), s.misses.Load(), s.evicts.Load()
}

// Fetch returns a private copy of the payload for key, loading it
// through load on a miss. Concurrent fetches of the same key are
// coalesced so load runs at most once; every caller shares the loaded
// slice and must treat it as read-only. load must return at least
// EntrySize bytes.
func (s *Synced) Fetch(ctx context.Context, key []byte, load func(ctx context.Context, key []byte) ([]byte, error)) ([]byte, error) {
	// Fast path: copy out on a hit.
	dst := make([]byte, s.c.opt.EntrySize)
	if s.Lookup(key, dst) != nil {
		return dst, nil
	}

	return s.sf.Do(ctx, string(key), func() ([]byte, error) {
		// Double-check after winning the flight.
		buf := make([]byte, s.c.opt.EntrySize)
		if s.Lookup(key, buf) != nil {
			return buf, nil
		}
		v, err := load(ctx, key)
		if err != nil {
			return nil, err
		}
		s.Add(key, v)
		return v, nil
	})
}

// countingMetrics feeds the Synced counters, then delegates to the
// caller-configured hook.
type countingMetrics struct {
	s    *Synced
	next Metrics
}

func (m *countingMetrics) Hit()  { m.s.hits.Add(1); m.next.Hit() }
func (m *countingMetrics) Miss() { m.s.misses.Add(1); m.next.Miss() }
func (m *countingMetrics) Evict(r EvictReason) {
	m.s.evicts.Add(1)
	m.next.Evict(r)
}
func (m *countingMetrics) Size(entries int) { m.next.Size(entries) }
