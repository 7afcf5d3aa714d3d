package cache

import (
	"encoding/binary"
	"math/rand"
	"sync/atomic"
	"testing"
)

// benchmarkMix exercises a read/write mix against a warm Synced cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
func benchmarkMix(b *testing.B, readsPct int) {
	s, err := NewSynced(Options{
		Capacity:  100_000,
		EntrySize: 32,
		KeySize:   8,
	})
	if err != nil {
		b.Fatalf("NewSynced: %v", err)
	}
	b.Cleanup(s.Destroy)

	// Preload half the capacity to get a realistic hit-rate.
	val := make([]byte, 32)
	key := make([]byte, 8)
	for i := 0; i < 50_000; i++ {
		binary.LittleEndian.PutUint64(key, uint64(i))
		s.Add(key, val)
	}

	// Report per-op allocations for a rough idea where costs go.
	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := uint64(1<<16 - 1) // hot keyspace (power of two for fast &-mask)

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		k := make([]byte, 8)
		v := make([]byte, 32)
		dst := make([]byte, 32)
		i := uint64(0)
		for pb.Next() {
			binary.LittleEndian.PutUint64(k, i&keyMask)
			if r.Intn(100) < readsPct {
				s.Lookup(k, dst)
			} else {
				s.Add(k, v)
			}
			i++
		}
	})
}

func BenchmarkSynced_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkSynced_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// BenchmarkCache_Lookup measures the unsynchronized hot path: a hit with
// copy-out on a full cache.
func BenchmarkCache_Lookup(b *testing.B) {
	c, err := New(Options{Capacity: 4096, EntrySize: 32, KeySize: 8})
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	b.Cleanup(c.Destroy)

	key := make([]byte, 8)
	val := make([]byte, 32)
	for i := 0; i < 4096; i++ {
		binary.LittleEndian.PutUint64(key, uint64(i))
		c.Add(key, val)
	}

	dst := make([]byte, 32)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		binary.LittleEndian.PutUint64(key, uint64(i)&4095)
		c.Lookup(key, dst)
	}
}

// BenchmarkCache_AddEvict measures steady-state insertion with every Add
// evicting the LRU entry.
func BenchmarkCache_AddEvict(b *testing.B) {
	c, err := New(Options{Capacity: 1024, EntrySize: 32, KeySize: 8})
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	b.Cleanup(c.Destroy)

	key := make([]byte, 8)
	val := make([]byte, 32)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		binary.LittleEndian.PutUint64(key, uint64(i))
		c.Add(key, val)
	}
}
