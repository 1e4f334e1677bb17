package transient

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet_NoTTL(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{ConcurrencySafe: false})
	require.NoError(t, s.Set("a", []byte("1"), 0))

	v, ok, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
	require.Equal(t, 1, s.Len())
}

func TestMemoryStore_TTL_Expiry(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{ConcurrencySafe: true})

	// Freeze time via now indirection
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	require.NoError(t, s.Set("k", []byte("v"), 1))
	_, ok, _ := s.Get("k")
	require.True(t, ok, "expected hit before expiry")

	// advance time beyond TTL
	base = base.Add(2 * time.Second)
	_, ok, _ = s.Get("k")
	require.False(t, ok, "expected miss after expiry")

	n, err := s.PurgeExpired()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 0, s.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{})
	require.NoError(t, s.Set("k", []byte("v"), 0))

	deleted, err := s.Delete("k")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Delete("k")
	require.NoError(t, err)
	require.False(t, deleted, "second delete has nothing to remove")
}

func TestMemoryStore_NegativeTTL(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{})
	require.ErrorIs(t, s.Set("k", []byte("v"), -1), ErrNegativeTTL)
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{})
	require.NoError(t, s.Set("app.a", []byte("1"), 0))
	require.NoError(t, s.Set("app.b", []byte("2"), 0))
	require.NoError(t, s.Set("other", []byte("3"), 0))

	n, err := s.DeletePrefix("app.")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, ok, _ := s.Get("other")
	require.True(t, ok)
	require.Equal(t, 1, s.Len())
}

func TestMemoryStore_ConcurrencySafe(t *testing.T) {
	keys := 50
	rounds := 100

	s := NewMemoryStore(MemoryOptions{ConcurrencySafe: true})
	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		key := strconv.Itoa(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_ = s.Set(key, []byte{byte(r)}, 0)
				_, _, _ = s.Get(key)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, keys, s.Len())
}
