package cache

import (
	"bytes"

	"github.com/zeebo/xxh3"
)

// Options configures the cache geometry and its caller-supplied hooks.
// Capacity, EntrySize and KeySize are required; every function field has
// a usable default applied in New:
//   - nil Allocate/Free  -> make([]byte, n) and a no-op release
//   - nil CmpKey         -> bytes.Compare
//   - nil KeyToNumber    -> low 32 bits of xxh3 over the key bytes
//   - nil Metrics        -> NoopMetrics
type Options struct {
	// Capacity is the fixed maximum number of live entries (1..1<<31).
	// Immutable after construction; the cache never resizes.
	Capacity int

	// EntrySize is the payload size in bytes. Slots are laid out with a
	// stride of EntrySize rounded up to the next multiple of 4.
	EntrySize int

	// KeySize is the exact key length in bytes. Every key argument must
	// be exactly this long; key bytes are copied on insertion and caller
	// memory is never retained.
	KeySize int

	// Allocate obtains the arena's backing slab (one call, at New).
	// Free releases it (one call, at Destroy). Use these to place the
	// slab in caller-managed memory; nil means make/no-op.
	Allocate func(size int) []byte
	Free     func(slab []byte)

	// FreeEntry, if non-nil, is invoked with the entry's key and payload
	// on every path that removes the entry: capacity eviction during
	// Add, DeleteByKey, DeleteEntry, Clean and Destroy. It gives the
	// caller a last chance to release resources the payload refers to.
	FreeEntry func(key, payload []byte)

	// CmpKey compares two KeySize-byte keys, returning <0, 0 or >0.
	// The hash index resolves bucket collisions with it; keys are unique
	// under this comparator.
	CmpKey func(a, b []byte) int

	// KeyToNumber reduces a key to a 32-bit number. The hash index
	// spreads it with a Fibonacci multiplier, so sequential outputs are
	// fine (an identity function over small integer keys works).
	KeyToNumber func(key []byte) uint32

	// Metrics receives Hit/Miss/Evict/Size signals. Plug the
	// metrics/prom adapter to export them; nil means NoopMetrics.
	Metrics Metrics
}

// maxCapacity bounds Capacity to keep slot arithmetic in int range.
const maxCapacity = 1 << 31

// withDefaults validates the geometry and fills nil hooks.
func (o Options) withDefaults() (Options, error) {
	if o.Capacity < 1 || o.Capacity > maxCapacity || o.EntrySize < 1 || o.KeySize < 1 {
		return o, ErrBadOptions
	}
	if o.Allocate == nil {
		o.Allocate = func(size int) []byte { return make([]byte, size) }
	}
	if o.Free == nil {
		o.Free = func([]byte) {}
	}
	if o.CmpKey == nil {
		o.CmpKey = bytes.Compare
	}
	if o.KeyToNumber == nil {
		o.KeyToNumber = func(key []byte) uint32 { return uint32(xxh3.Hash(key)) }
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	return o, nil
}
