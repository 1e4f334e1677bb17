package transient

import "errors"

// Store is a key-value backend with optional per-entry expiration.
// It has no way to list keys; see Sweeper for prefix deletion.
type Store interface {
	// Get returns the payload and whether a live entry was found.
	// A miss or an expired entry is (nil, false, nil).
	Get(key string) ([]byte, bool, error)

	// Set writes the payload. ttl is in seconds; 0 means no expiration.
	Set(key string, value []byte, ttl int64) error

	// Delete removes the entry and reports whether one existed.
	// Deleting a missing key is not an error.
	Delete(key string) (bool, error)
}

// Sweeper is implemented by stores that can delete every entry (value and
// expiration metadata) whose key starts with a prefix in one operation.
type Sweeper interface {
	DeletePrefix(prefix string) (int64, error)
}

// Purger is implemented by stores that keep expired entries around until
// they are read or purged.
type Purger interface {
	PurgeExpired() (int64, error)
}

var (
	ErrKeyTooLong  = errors.New("transient: key too long")
	ErrNegativeTTL = errors.New("transient: negative ttl")
)
