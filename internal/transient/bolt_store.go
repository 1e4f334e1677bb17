package transient

import (
	"bytes"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore is a persistent Store backed by a single bbolt bucket.
// It is safe for concurrent use by multiple goroutines.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// BoltOptions controls construction of a BoltStore.
type BoltOptions struct {
	// Bucket is the name of the Bolt bucket to use.
	Bucket string
}

// OpenBolt initializes or opens a BoltStore at the given path.
func OpenBolt(path string, opts BoltOptions) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("transients")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, bucket: bucket, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Layout: 8 bytes big endian expiresAt || raw value. expiresAt 0 never expires.
func encodeRecord(value []byte, expiresAt int64) []byte {
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)
	return buf
}

func (s *BoltStore) expired(record []byte) bool {
	if len(record) < 8 {
		return true
	}
	expiresAt := int64(binary.BigEndian.Uint64(record[:8]))
	return expiresAt > 0 && s.now().Unix() > expiresAt
}

// Get implements Store.Get.
func (s *BoltStore) Get(key string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil || s.expired(v) {
			return nil
		}
		found = true
		out = append([]byte(nil), v[8:]...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

// Set implements Store.Set.
func (s *BoltStore) Set(key string, value []byte, ttl int64) error {
	if ttl < 0 {
		return ErrNegativeTTL
	}
	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = s.now().Unix() + ttl
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), encodeRecord(value, expiresAt))
	})
}

// Delete implements Store.Delete.
func (s *BoltStore) Delete(key string) (bool, error) {
	var existed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		existed = !s.expired(v)
		return b.Delete([]byte(key))
	})
	return existed, err
}

// DeletePrefix implements Sweeper. Keys are collected first because deleting
// under a cursor skips the following element.
func (s *BoltStore) DeletePrefix(prefix string) (int64, error) {
	var n int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		p := []byte(prefix)
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// PurgeExpired implements Purger.
func (s *BoltStore) PurgeExpired() (int64, error) {
	var n int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var keys [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if s.expired(v) {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

var (
	_ Store   = (*BoltStore)(nil)
	_ Sweeper = (*BoltStore)(nil)
	_ Purger  = (*BoltStore)(nil)
)
