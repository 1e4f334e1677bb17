package cache

import (
	"sort"
	"strings"
	"sync"
)

// keyIndex is the set of prefixed keys this layer has written and not yet
// deleted. It is process-local and lossy: entries that expire in the store
// stay here until deleted, and nothing survives a restart.
type keyIndex struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newKeyIndex() *keyIndex {
	return &keyIndex{keys: make(map[string]struct{})}
}

func (ix *keyIndex) add(key string) {
	ix.mu.Lock()
	ix.keys[key] = struct{}{}
	ix.mu.Unlock()
}

func (ix *keyIndex) remove(key string) {
	ix.mu.Lock()
	delete(ix.keys, key)
	ix.mu.Unlock()
}

// snapshot returns the keys in sorted order.
func (ix *keyIndex) snapshot() []string {
	ix.mu.Lock()
	out := make([]string, 0, len(ix.keys))
	for k := range ix.keys {
		out = append(out, k)
	}
	ix.mu.Unlock()
	sort.Strings(out)
	return out
}

// prefixKey applies the layer prefix. A key that already carries the prefix
// is not prefixed twice, so prefixKey is idempotent.
func prefixKey(prefix, key string) string {
	return prefix + strings.TrimPrefix(key, prefix)
}
