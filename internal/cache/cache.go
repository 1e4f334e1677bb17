package cache

// Cache defines a synchronous key-value cache contract with optional TTL per
// entry and batch variants of each operation.
type Cache[V any] interface {
	// Get returns the stored value, or def on a miss.
	Get(key string, def V) V

	// Set stores the value. A nil ttl never expires.
	Set(key string, value V, ttl TTL) error

	// Delete removes a key and reports whether an entry existed.
	Delete(key string) (bool, error)

	// Has reports whether a live entry exists for key.
	Has(key string) bool

	// GetMultiple resolves every key, using def for misses.
	GetMultiple(keys []string, def V) map[string]V

	// SetMultiple stores every value with the same ttl, stopping at the
	// first failure. Earlier writes are kept.
	SetMultiple(values map[string]V, ttl TTL) error

	// DeleteMultiple deletes every key, stopping at the first failure.
	DeleteMultiple(keys []string) error

	// Clear removes every entry this cache owns.
	Clear() error
}
