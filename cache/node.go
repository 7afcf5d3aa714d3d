package cache

import (
	"github.com/zhaowynn/slabcache/internal/hashidx"
	"github.com/zhaowynn/slabcache/internal/list"
)

// entry is the recency-list unit for one live cache entry. It ties the
// three structures together: the key copy addresses the hash index, the
// payload view addresses the arena slot, and the slot's back-reference
// points back at this entry.
//
// On eviction the entry (with its key buffer and slot) is reused for the
// incoming key rather than freed; hash bindings are per-key and are
// re-created.
type entry struct {
	key     []byte // private copy, exactly KeySize bytes
	payload []byte // arena slot view, exactly EntrySize bytes

	hash *hashidx.Entry[*entry] // binding in the hash index
	node *list.Node[*entry]     // position in the recency list

	// pins counts outstanding pinned pointers. Non-zero blocks eviction
	// and deletion. Unchecked on overflow: saturating it would mask an
	// unpaired-lock bug in the caller.
	pins uint32
}
