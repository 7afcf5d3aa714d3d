// Package hashidx implements the chained hash index mapping fixed-size
// byte keys to their owner references. The bucket count is the capacity
// rounded up to a power of two; bucket selection uses Fibonacci hashing
// over a caller-supplied key-to-number function.
package hashidx

import (
	"github.com/zhaowynn/slabcache/internal/list"
	"github.com/zhaowynn/slabcache/internal/util"
)

// goldenRatioPrime32 is the 32-bit Fibonacci hashing multiplier; the top
// bits of the product select the bucket.
const goldenRatioPrime32 = 0x9E370001

// Entry is one key->owner binding stored in a bucket chain. Key is the
// table's private copy of the key bytes.
type Entry[R any] struct {
	Key   []byte
	Owner R

	node *list.Node[*Entry[R]]
}

// Table is a chained hash table with a fixed bucket array. It performs
// no resizing; capacity is decided at construction. Not safe for
// concurrent use.
type Table[R any] struct {
	buckets []list.List[*Entry[R]]
	bits    uint
	keySize int
	count   int

	cmp   func(a, b []byte) int
	toNum func(key []byte) uint32
}

// New builds a table sized for capacity entries: 2^ceil(log2(capacity))
// buckets. keySize is the exact length of every key; cmp and toNum are
// the caller's comparator and key-to-number function.
func New[R any](capacity, keySize int, cmp func(a, b []byte) int, toNum func(key []byte) uint32) *Table[R] {
	if capacity < 1 {
		capacity = 1
	}
	bits := util.CeilLog2(uint32(capacity))
	return &Table[R]{
		buckets: make([]list.List[*Entry[R]], 1<<bits),
		bits:    bits,
		keySize: keySize,
		cmp:     cmp,
		toNum:   toNum,
	}
}

// Len returns the number of live entries.
func (t *Table[R]) Len() int { return t.count }

// Buckets returns the bucket count.
func (t *Table[R]) Buckets() int { return len(t.buckets) }

// BucketLen returns the chain length of bucket i.
func (t *Table[R]) BucketLen(i int) int { return t.buckets[i].Len() }

// bucketOf selects the bucket for a key: the top bits of the 32-bit
// product with the Fibonacci multiplier. With bits == 0 the shift by 32
// yields bucket 0 (single-bucket table).
func (t *Table[R]) bucketOf(key []byte) *list.List[*Entry[R]] {
	h := t.toNum(key) * goldenRatioPrime32
	return &t.buckets[h>>(32-t.bits)]
}

// Insert appends a new entry with a private copy of the key bytes to its
// bucket chain and returns it. Insert does not detect duplicates; call
// Find first.
func (t *Table[R]) Insert(key []byte, owner R) *Entry[R] {
	kcopy := make([]byte, t.keySize)
	copy(kcopy, key)

	e := &Entry[R]{Key: kcopy, Owner: owner}
	e.node = &list.Node[*Entry[R]]{Value: e}
	t.bucketOf(kcopy).PushBack(e.node)
	t.count++
	return e
}

// Find walks the key's bucket chain and returns the first entry whose
// stored key equals key under the comparator, or nil.
func (t *Table[R]) Find(key []byte) *Entry[R] {
	n := t.bucketOf(key).Each(func(n *list.Node[*Entry[R]]) bool {
		return t.cmp(key, n.Value.Key) != 0
	})
	if n == nil {
		return nil
	}
	return n.Value
}

// Remove unlinks e from its bucket chain. e must have been returned by
// Insert or Find on this table and not removed since.
func (t *Table[R]) Remove(e *Entry[R]) {
	t.bucketOf(e.Key).Remove(e.node)
	e.node = nil
	t.count--
}

// Clear empties every bucket chain but keeps the bucket array.
func (t *Table[R]) Clear() {
	for i := range t.buckets {
		t.buckets[i].Clear(func(n *list.Node[*Entry[R]]) {
			n.Value.node = nil
		})
	}
	t.count = 0
}

// Destroy clears the table and releases the bucket array.
func (t *Table[R]) Destroy() {
	t.Clear()
	t.buckets = nil
}
