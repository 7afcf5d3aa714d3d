package cache

import "errors"

var (
	// ErrNotFound is returned when a key or payload pointer does not
	// resolve to a live entry.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrLocked is returned when a delete targets an entry whose pin
	// count is non-zero.
	ErrLocked = errors.New("cache: entry is locked")

	// ErrAlreadyUnlocked is returned by Unlock when the entry's pin
	// count is already zero. It indicates an unpaired lock/unlock.
	ErrAlreadyUnlocked = errors.New("cache: entry is already unlocked")

	// ErrKeySize is returned when a key argument is not exactly
	// Options.KeySize bytes long.
	ErrKeySize = errors.New("cache: key length does not match KeySize")

	// ErrBadOptions is returned by New for a non-positive Capacity,
	// EntrySize or KeySize, or a Capacity above 1<<31.
	ErrBadOptions = errors.New("cache: Capacity, EntrySize and KeySize must be positive, Capacity at most 1<<31")
)
