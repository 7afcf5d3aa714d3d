package cache

import (
	"github.com/zhaowynn/slabcache/internal/arena"
	"github.com/zhaowynn/slabcache/internal/hashidx"
	"github.com/zhaowynn/slabcache/internal/list"
)

// Cache is a bounded, key-addressed object cache with LRU replacement
// and per-entry pinning. Payloads live in a fixed slab of equal-size
// slots whose addresses are stable for the cache's lifetime, so pinned
// slot views stay valid until unlocked.
//
// Cache performs no internal synchronization; wrap it in Synced (or
// serialize externally) to share an instance across goroutines.
type Cache struct {
	arena *arena.Arena[*entry]
	idx   *hashidx.Table[*entry]
	lru   list.List[*entry] // head = MRU, tail = eviction candidate

	slab []byte
	opt  Options
}

// New constructs a cache from opt. It allocates the backing slab through
// opt.Allocate and builds the slot arena, hash index and recency list.
func New(opt Options) (*Cache, error) {
	opt, err := opt.withDefaults()
	if err != nil {
		return nil, err
	}

	slab := opt.Allocate(arena.Stride(opt.EntrySize) * opt.Capacity)
	ar, err := arena.New[*entry](slab, opt.EntrySize, opt.Capacity)
	if err != nil {
		opt.Free(slab)
		return nil, err
	}

	return &Cache{
		arena: ar,
		idx:   hashidx.New[*entry](opt.Capacity, opt.KeySize, opt.CmpKey, opt.KeyToNumber),
		slab:  slab,
		opt:   opt,
	}, nil
}

// Lookup finds the entry for key and promotes it to MRU.
//
// With dst == nil the entry is pinned and the returned slice is the slot
// itself; release it with Unlock. With a non-nil dst (at least EntrySize
// bytes) the payload is copied into dst and nothing is pinned.
// Returns nil on a miss, a short dst, or a wrong-size key.
func (c *Cache) Lookup(key, dst []byte) []byte {
	if len(key) != c.opt.KeySize {
		return nil
	}
	if dst != nil && len(dst) < c.opt.EntrySize {
		return nil
	}

	h := c.idx.Find(key)
	if h == nil {
		c.opt.Metrics.Miss()
		return nil
	}
	e := h.Owner

	var ret []byte
	if dst == nil {
		e.pins++
		ret = e.payload
	} else {
		copy(dst[:c.opt.EntrySize], e.payload)
		ret = dst
	}

	c.lru.Remove(e.node)
	c.lru.PushFront(e.node)
	c.opt.Metrics.Hit()
	return ret
}

// Add inserts a new entry for key and returns its slot view.
//
// With a non-nil src (at least EntrySize bytes) the payload is copied
// from src. With src == nil the slot bytes are left as-is and the entry
// is returned pinned, for the caller to write through the returned view;
// release it with Unlock.
//
// When the cache is full, the least-recently-used unpinned entry is
// evicted and its node, key buffer and slot are reused. Returns nil if
// the key already exists, if every entry is pinned, or for a wrong-size
// key or short src.
func (c *Cache) Add(key, src []byte) []byte {
	if len(key) != c.opt.KeySize {
		return nil
	}
	if src != nil && len(src) < c.opt.EntrySize {
		return nil
	}
	if c.idx.Find(key) != nil {
		return nil
	}

	var e *entry
	fresh := false
	if c.lru.Len() < c.opt.Capacity {
		slot, err := c.arena.Acquire()
		if err != nil {
			return nil
		}
		e = &entry{key: make([]byte, c.opt.KeySize), payload: slot}
		e.node = &list.Node[*entry]{Value: e}
		fresh = true
	} else {
		// Full: the victim is the tail-most node with no pins.
		victim := c.lru.EachReverse(func(n *list.Node[*entry]) bool {
			return n.Value.pins != 0
		})
		if victim == nil {
			return nil
		}
		e = victim.Value
		c.lru.Remove(victim)
		if c.opt.FreeEntry != nil {
			c.opt.FreeEntry(e.key, e.payload)
		}
		c.idx.Remove(e.hash)
		e.hash = nil
		clear(e.key)
		c.opt.Metrics.Evict(EvictCapacity)
	}

	if src != nil {
		copy(e.payload, src[:c.opt.EntrySize])
	}
	copy(e.key, key)
	e.pins = 0
	c.lru.PushFront(e.node)

	if fresh {
		if err := c.arena.SetRef(e.payload, e); err != nil {
			// Roll back to the pre-Add state.
			c.lru.Remove(e.node)
			_ = c.arena.Release(e.payload)
			return nil
		}
	}
	e.hash = c.idx.Insert(key, e)

	if src == nil {
		e.pins = 1
	}
	c.opt.Metrics.Size(c.idx.Len())
	return e.payload
}

// DeleteByKey removes the entry for key.
// Returns ErrKeySize, ErrNotFound, or ErrLocked if the entry is pinned.
func (c *Cache) DeleteByKey(key []byte) error {
	if len(key) != c.opt.KeySize {
		return ErrKeySize
	}
	h := c.idx.Find(key)
	if h == nil {
		return ErrNotFound
	}
	e := h.Owner
	if e.pins > 0 {
		return ErrLocked
	}
	c.removeEntry(e)
	return nil
}

// DeleteEntry removes the entry owning a payload pointer previously
// returned by Lookup or Add. Returns ErrNotFound for a pointer that does
// not resolve to a live slot, or ErrLocked if the entry is pinned.
func (c *Cache) DeleteEntry(payload []byte) error {
	e, ok := c.arena.Ref(payload)
	if !ok {
		return ErrNotFound
	}
	if e.pins > 0 {
		return ErrLocked
	}
	return c.DeleteByKey(e.key)
}

// Unlock releases one pin on the entry owning payload.
// Returns ErrNotFound for an unresolvable pointer, or ErrAlreadyUnlocked
// when the pin count is already zero (an unpaired unlock).
func (c *Cache) Unlock(payload []byte) error {
	e, ok := c.arena.Ref(payload)
	if !ok {
		return ErrNotFound
	}
	if e.pins == 0 {
		return ErrAlreadyUnlocked
	}
	e.pins--
	return nil
}

// Clean force-evicts every entry regardless of pin state, returning the
// cache to its freshly-created shape. Outstanding slot views become
// invalid; callers must ensure none are still in use.
func (c *Cache) Clean() {
	for {
		n := c.lru.PopFront()
		if n == nil {
			break
		}
		e := n.Value
		if c.opt.FreeEntry != nil {
			c.opt.FreeEntry(e.key, e.payload)
		}
		_ = c.arena.Release(e.payload)
		e.hash = nil
		c.opt.Metrics.Evict(EvictClean)
	}
	c.idx.Clear()
	c.opt.Metrics.Size(0)
}

// Destroy cleans the cache, releases the hash index, and hands the
// backing slab to the configured Free hook. The cache must not be used
// afterwards.
func (c *Cache) Destroy() {
	c.Clean()
	c.idx.Destroy()
	c.opt.Free(c.slab)
	c.slab = nil
	c.arena = nil
}

// Len returns the current number of live entries.
func (c *Cache) Len() int { return c.idx.Len() }

// Cap returns the fixed capacity.
func (c *Cache) Cap() int { return c.opt.Capacity }

// removeEntry unlinks e from all three structures and releases its slot.
// Pin state must already have been checked.
func (c *Cache) removeEntry(e *entry) {
	if c.opt.FreeEntry != nil {
		c.opt.FreeEntry(e.key, e.payload)
	}
	c.idx.Remove(e.hash)
	_ = c.arena.Release(e.payload)
	c.lru.Remove(e.node)
	e.hash = nil
	e.node = nil
	e.payload = nil
	c.opt.Metrics.Evict(EvictDelete)
	c.opt.Metrics.Size(c.idx.Len())
}
