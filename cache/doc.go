// Package cache provides a bounded, key-addressed object cache with LRU
// replacement and per-entry pinning ("locking"). Capacity, entry size
// and key size are fixed at construction; payloads live in a slab of
// equal-size slots whose addresses never change, so callers can hold
// stable pointers into the cache.
//
// # Design
//
//   - Storage: a fixed arena of Capacity slots, each EntrySize bytes
//     (stride rounded up to a 4-byte multiple). A slot carries a
//     back-reference to the entry that owns it, letting a payload
//     pointer resolve back to its metadata in O(1).
//
//   - Index: a chained hash table keyed by the caller's KeySize-byte
//     keys. Bucket count is the capacity rounded up to a power of two;
//     buckets are selected by Fibonacci hashing over a caller-supplied
//     key-to-number function (xxh3 by default). No resizing.
//
//   - Recency: an intrusive doubly linked list, head = MRU. When the
//     cache is full, Add evicts the tail-most entry whose pin count is
//     zero and reuses its node, key buffer and slot.
//
//   - Pinning: Lookup(key, nil) and Add(key, nil) return a pointer into
//     slot storage and increment the entry's pin count. Pinned entries
//     cannot be evicted or deleted until every pin is released with
//     Unlock. Lookup with a destination buffer copies instead and pins
//     nothing.
//
//   - Concurrency: Cache itself is single-threaded by contract. Synced
//     wraps it with one mutex per operation and adds Fetch, which
//     coalesces concurrent loads of the same key.
//
// # Basic usage
//
//	c, err := cache.New(cache.Options{Capacity: 1024, EntrySize: 64, KeySize: 8})
//	if err != nil {
//	    // ...
//	}
//	defer c.Destroy()
//
//	key := []byte("order-42")
//	c.Add(key, payload)            // copy in
//
//	buf := make([]byte, 64)
//	if c.Lookup(key, buf) != nil { // copy out, no pin
//	    // use buf
//	}
//
// # Pinned access
//
//	p := c.Lookup(key, nil) // pinned slot view
//	if p != nil {
//	    // read/write p in place; the entry cannot be evicted
//	    _ = c.Unlock(p)
//	}
//
// # Write-through insertion
//
//	p := c.Add(newKey, nil) // pinned, bytes unwritten
//	if p != nil {
//	    fillEntry(p)
//	    _ = c.Unlock(p)
//	}
//
// Exporting metrics works as in cmd/bench: plug metrics/prom.New into
// Options.Metrics and serve promhttp.
package cache
