// Package arena implements a fixed-capacity slab of equal-size payload
// slots. Slots are carved out of a single caller-provided byte slab at
// construction and live for the arena's lifetime; acquisition and release
// only move slot indices between the free set and the live set.
//
// Each live slot carries a back-reference of type R identifying its owner.
// The back-references live in an arena-internal array rather than inside
// the byte slab: a pointer stored in a []byte is invisible to the garbage
// collector. Resolution still needs nothing but the payload pointer —
// Index recovers the slot number by pointer arithmetic.
package arena

import (
	"errors"
	"unsafe"
)

var (
	// ErrEmpty is returned by Acquire when no slot is free.
	ErrEmpty = errors.New("arena: no free slot")
	// ErrNotOwned is returned when a payload pointer does not address a
	// slot of this arena, is misaligned, or the slot is already free.
	ErrNotOwned = errors.New("arena: payload not owned by this arena")
	// ErrSlabTooSmall is returned by New when the backing slab cannot
	// hold capacity slots of the rounded entry stride.
	ErrSlabTooSmall = errors.New("arena: backing slab too small")
	// ErrBadGeometry is returned by New for a non-positive entry size
	// or capacity.
	ErrBadGeometry = errors.New("arena: entry size and capacity must be positive")
)

// Stride returns the slot stride for an entry size: the size rounded up
// to the next multiple of 4. Payloads are therefore at least 4-byte
// aligned relative to the slab start.
func Stride(entrySize int) int {
	return (entrySize + 3) &^ 3
}

// Arena is a fixed slab of capacity slots with stride Stride(entrySize).
// It is not safe for concurrent use.
type Arena[R any] struct {
	backing   []byte
	entrySize int
	stride    int
	capacity  int

	refs []R    // back-reference per slot; zero value while free
	live []bool // slot state; false = in the free set
	free []int  // stack of free slot indices
}

// New partitions backing into capacity slots of Stride(entrySize) bytes.
// The slab must be at least Stride(entrySize)*capacity bytes; excess is
// ignored. All slots start free.
func New[R any](backing []byte, entrySize, capacity int) (*Arena[R], error) {
	if entrySize <= 0 || capacity <= 0 {
		return nil, ErrBadGeometry
	}
	stride := Stride(entrySize)
	if len(backing) < stride*capacity {
		return nil, ErrSlabTooSmall
	}

	a := &Arena[R]{
		backing:   backing,
		entrySize: entrySize,
		stride:    stride,
		capacity:  capacity,
		refs:      make([]R, capacity),
		live:      make([]bool, capacity),
		free:      make([]int, 0, capacity),
	}
	// Free set starts as {0..capacity-1}; order of acquisition is not
	// part of the contract.
	for i := capacity - 1; i >= 0; i-- {
		a.free = append(a.free, i)
	}
	return a, nil
}

// Cap returns the total number of slots.
func (a *Arena[R]) Cap() int { return a.capacity }

// Free returns the number of currently free slots.
func (a *Arena[R]) Free() int { return len(a.free) }

// Acquire removes a slot from the free set and returns its payload view.
// The back-reference is reset to the free sentinel (zero R); the payload
// bytes are whatever the slot last held. Returns ErrEmpty when full.
func (a *Arena[R]) Acquire() ([]byte, error) {
	if len(a.free) == 0 {
		return nil, ErrEmpty
	}
	i := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]

	var zero R
	a.refs[i] = zero
	a.live[i] = true
	return a.slot(i), nil
}

// Release returns a slot to the free set and resets its back-reference.
// Fails with ErrNotOwned if payload is not a live slot of this arena.
func (a *Arena[R]) Release(payload []byte) error {
	i, err := a.Index(payload)
	if err != nil {
		return err
	}
	if !a.live[i] {
		return ErrNotOwned
	}
	var zero R
	a.refs[i] = zero
	a.live[i] = false
	a.free = append(a.free, i)
	return nil
}

// SetRef stores the back-reference for a live slot.
func (a *Arena[R]) SetRef(payload []byte, ref R) error {
	i, err := a.Index(payload)
	if err != nil {
		return err
	}
	if !a.live[i] {
		return ErrNotOwned
	}
	a.refs[i] = ref
	return nil
}

// Ref resolves a payload pointer to its back-reference in O(1).
// ok is false when the pointer is not a slot of this arena or the slot
// is free (the free sentinel).
func (a *Arena[R]) Ref(payload []byte) (ref R, ok bool) {
	i, err := a.Index(payload)
	if err != nil || !a.live[i] {
		return ref, false
	}
	return a.refs[i], true
}

// Index resolves a payload pointer to its slot index by pointer
// arithmetic, validating alignment and range.
func (a *Arena[R]) Index(payload []byte) (int, error) {
	if len(payload) == 0 {
		return 0, ErrNotOwned
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.backing)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(payload)))
	if p < base {
		return 0, ErrNotOwned
	}
	off := p - base
	if off%uintptr(a.stride) != 0 {
		return 0, ErrNotOwned
	}
	i := int(off / uintptr(a.stride))
	if i >= a.capacity {
		return 0, ErrNotOwned
	}
	return i, nil
}

// slot returns the payload view of slot i: entrySize bytes, capacity
// capped so callers cannot spill into the next slot.
func (a *Arena[R]) slot(i int) []byte {
	off := i * a.stride
	return a.backing[off : off+a.entrySize : off+a.entrySize]
}
