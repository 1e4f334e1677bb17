package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"transient-cache-api/internal/transient"

	"go.uber.org/zap"
)

var (
	// ErrSweepFailed marks a Clear whose prefix sweep failed.
	ErrSweepFailed = errors.New("cache: prefix sweep failed")
	// ErrIndexDeleteFailed marks a Clear whose side-index delete failed.
	ErrIndexDeleteFailed = errors.New("cache: index delete failed")
)

// Options controls construction of a Layer.
type Options struct {
	// Prefix is prepended to every key before it reaches the store.
	Prefix string
	Logger *zap.Logger
}

// Layer implements Cache on top of a transient.Store. Values are JSON encoded.
//
// The store cannot list keys, so Layer records every key it writes. Clear
// deletes those keys and, when a prefix is configured and the store is a
// transient.Sweeper, also sweeps the prefix in the store to catch entries
// written by earlier processes.
type Layer[V any] struct {
	prefix string
	store  transient.Store
	keys   *keyIndex
	log    *zap.Logger
}

// New constructs a Layer over store.
func New[V any](store transient.Store, opts Options) *Layer[V] {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Layer[V]{
		prefix: opts.Prefix,
		store:  store,
		keys:   newKeyIndex(),
		log:    log.With(zap.String("prefix", opts.Prefix)),
	}
}

// Prefix returns the configured key prefix.
func (l *Layer[V]) Prefix() string { return l.prefix }

// Keys returns the prefixed keys currently tracked by this layer.
func (l *Layer[V]) Keys() []string { return l.keys.snapshot() }

// Get implements Cache.Get. Store failures and undecodable payloads are
// logged and reported as a miss.
func (l *Layer[V]) Get(key string, def V) V {
	if v, ok := l.Lookup(key); ok {
		return v
	}
	return def
}

// Lookup returns the stored value and whether it was found.
func (l *Layer[V]) Lookup(key string) (V, bool) {
	var zero V
	key = prefixKey(l.prefix, key)

	raw, ok, err := l.store.Get(key)
	if err != nil {
		l.log.Warn("cache get", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		l.log.Warn("cache decode", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}

// Set implements Cache.Set. The key is tracked before the write, whether or
// not the write succeeds.
func (l *Layer[V]) Set(key string, value V, ttl TTL) error {
	key = prefixKey(l.prefix, key)
	l.keys.add(key)

	seconds, err := normalizeTTL(ttl)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := l.store.Set(key, raw, seconds); err != nil {
		l.log.Warn("cache set", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	l.log.Debug("cache set", zap.String("key", key), zap.Int64("ttl", seconds))
	return nil
}

// Delete implements Cache.Delete. The key leaves the index even when the
// store has nothing to delete or fails.
func (l *Layer[V]) Delete(key string) (bool, error) {
	return l.deletePrefixed(prefixKey(l.prefix, key))
}

func (l *Layer[V]) deletePrefixed(key string) (bool, error) {
	l.keys.remove(key)

	deleted, err := l.store.Delete(key)
	if err != nil {
		l.log.Warn("cache delete", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache delete %s: %w", key, err)
	}
	return deleted, nil
}

// Has implements Cache.Has. A stored zero value counts as present.
func (l *Layer[V]) Has(key string) bool {
	_, ok := l.Lookup(key)
	return ok
}

// GetMultiple implements Cache.GetMultiple. The result is keyed by the keys
// as given.
func (l *Layer[V]) GetMultiple(keys []string, def V) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		out[k] = l.Get(k, def)
	}
	return out
}

// SetMultiple implements Cache.SetMultiple. Keys are written in sorted order.
func (l *Layer[V]) SetMultiple(values map[string]V, ttl TTL) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := l.Set(k, values[k], ttl); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMultiple implements Cache.DeleteMultiple. Keys that have nothing to
// delete do not stop the batch.
func (l *Layer[V]) DeleteMultiple(keys []string) error {
	for _, k := range keys {
		if _, err := l.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Clear implements Cache.Clear. Both the prefix sweep and the index delete
// run; the returned error wraps ErrSweepFailed and/or ErrIndexDeleteFailed.
func (l *Layer[V]) Clear() error {
	var errs []error

	if l.prefix != "" {
		if sweeper, ok := l.store.(transient.Sweeper); ok {
			n, err := sweeper.DeletePrefix(l.prefix)
			if err != nil {
				l.log.Warn("cache sweep", zap.Error(err))
				errs = append(errs, fmt.Errorf("%w: %w", ErrSweepFailed, err))
			} else {
				l.log.Debug("cache sweep", zap.Int64("deleted", n))
			}
		} else {
			l.log.Warn("store cannot sweep by prefix; clearing tracked keys only")
		}
	}

	for _, k := range l.keys.snapshot() {
		if _, err := l.deletePrefixed(k); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrIndexDeleteFailed, err))
			break
		}
	}
	return errors.Join(errs...)
}

var _ Cache[any] = (*Layer[any])(nil)
