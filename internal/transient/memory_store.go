package transient

import (
	"strings"
	"sync"
	"time"
)

// memoryEntry stores a payload and its absolute expiration timestamp.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// MemoryStore is a map-backed Store with optional concurrency safety.
// Expired entries are dropped lazily on read or via PurgeExpired.
type MemoryStore struct {
	// If muPtr is nil, the store is NOT goroutine-safe.
	muPtr *sync.RWMutex

	items map[string]memoryEntry
}

// MemoryOptions controls construction of a MemoryStore.
type MemoryOptions struct {
	// ConcurrencySafe controls whether operations are guarded by a RWMutex.
	ConcurrencySafe bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	return &MemoryStore{
		muPtr: mu,
		items: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) lockR() func() {
	if s.muPtr == nil {
		return func() {}
	}
	s.muPtr.RLock()
	return s.muPtr.RUnlock
}

func (s *MemoryStore) lockW() func() {
	if s.muPtr == nil {
		return func() {}
	}
	s.muPtr.Lock()
	return s.muPtr.Unlock
}

// now is a small indirection to allow test stubbing.
var now = time.Now

func (e memoryEntry) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// Get implements Store.Get.
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	unlock := s.lockR()
	defer unlock()

	e, ok := s.items[key]
	if !ok || e.expired(now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set implements Store.Set.
func (s *MemoryStore) Set(key string, value []byte, ttl int64) error {
	if ttl < 0 {
		return ErrNegativeTTL
	}
	unlock := s.lockW()
	defer unlock()

	var exp time.Time
	if ttl > 0 {
		exp = now().Add(time.Duration(ttl) * time.Second)
	}
	s.items[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: exp,
	}
	return nil
}

// Delete implements Store.Delete. An expired entry is removed but reported
// as not found.
func (s *MemoryStore) Delete(key string) (bool, error) {
	unlock := s.lockW()
	defer unlock()

	e, ok := s.items[key]
	if !ok {
		return false, nil
	}
	delete(s.items, key)
	return !e.expired(now()), nil
}

// DeletePrefix implements Sweeper.
func (s *MemoryStore) DeletePrefix(prefix string) (int64, error) {
	unlock := s.lockW()
	defer unlock()

	var n int64
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

// PurgeExpired implements Purger.
func (s *MemoryStore) PurgeExpired() (int64, error) {
	unlock := s.lockW()
	defer unlock()

	var n int64
	nowTs := now()
	for k, e := range s.items {
		if e.expired(nowTs) {
			delete(s.items, k)
			n++
		}
	}
	return n, nil
}

// Len counts only non-expired entries.
func (s *MemoryStore) Len() int {
	unlock := s.lockR()
	defer unlock()
	count := 0
	nowTs := now()
	for _, e := range s.items {
		if !e.expired(nowTs) {
			count++
		}
	}
	return count
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Sweeper = (*MemoryStore)(nil)
	_ Purger  = (*MemoryStore)(nil)
)
