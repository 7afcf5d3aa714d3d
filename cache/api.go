package cache

// Interface is the operation surface shared by Cache and Synced.
//
// Keys are exactly Options.KeySize bytes; payloads are Options.EntrySize
// bytes. Lookup and Add follow the pin protocol: passing a nil dst/src
// returns a pointer into the cache's slot storage and pins the entry,
// which must later be released with Unlock.
type Interface interface {
	// Lookup finds the entry for key. With a non-nil dst it copies the
	// payload into dst and returns dst; with a nil dst it pins the entry
	// and returns the slot view. Returns nil on a miss. Either way a hit
	// promotes the entry to most-recently-used.
	Lookup(key, dst []byte) []byte

	// Add inserts a new entry for key, evicting the least-recently-used
	// unpinned entry if the cache is full. With a non-nil src the
	// payload bytes are copied from src; with a nil src the entry is
	// returned pinned so the caller can write through the slot view.
	// Returns nil if the key already exists, or if the cache is full
	// and every entry is pinned.
	Add(key, src []byte) []byte

	// DeleteByKey removes the entry for key.
	// Returns ErrNotFound or ErrLocked.
	DeleteByKey(key []byte) error

	// DeleteEntry removes the entry owning the payload pointer
	// previously returned by Lookup or Add.
	// Returns ErrNotFound or ErrLocked.
	DeleteEntry(payload []byte) error

	// Unlock releases one pin on the entry owning payload.
	// Returns ErrNotFound or ErrAlreadyUnlocked.
	Unlock(payload []byte) error

	// Clean force-evicts every entry, pinned or not. Outstanding slot
	// views become invalid; callers must ensure none are in use.
	Clean()

	// Destroy cleans the cache and releases the backing slab via the
	// configured Free hook. The cache must not be used afterwards.
	Destroy()

	// Len returns the current number of live entries.
	Len() int

	// Cap returns the fixed capacity.
	Cap() int
}

// Compile-time interface satisfaction checks.
var (
	_ Interface = (*Cache)(nil)
	_ Interface = (*Synced)(nil)
)
