package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genietools/genie-dat/pkg/genie"
)

func countingDecoder(calls *int) DecodeFunc {
	return func(b []byte) (*genie.Archive, error) {
		*calls++
		return &genie.Archive{Version: string(b)}, nil
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("VER 8.8")), Fingerprint([]byte("VER 8.8")))
	assert.NotEqual(t, Fingerprint([]byte("VER 8.8")), Fingerprint([]byte("VER 8.4")))
	// xxhash64 of the empty input
	assert.Equal(t, uint64(0xef46db3751d8e999), Fingerprint(nil))
}

func TestNewArchiveCache_Disabled(t *testing.T) {
	c := NewArchiveCache(0)
	require.Nil(t, c)

	calls := 0
	for i := 0; i < 3; i++ {
		a, err := c.GetOrDecode([]byte("x"), countingDecoder(&calls))
		require.NoError(t, err)
		assert.Equal(t, "x", a.Version)
	}
	assert.Equal(t, 3, calls)

	_, ok := c.Get(1)
	assert.False(t, ok)
	c.Add(1, &genie.Archive{})
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestGetOrDecode_Hit(t *testing.T) {
	c := NewArchiveCache(4)
	calls := 0

	first, err := c.GetOrDecode([]byte("VER 8.8"), countingDecoder(&calls))
	require.NoError(t, err)
	second, err := c.GetOrDecode([]byte("VER 8.8"), countingDecoder(&calls))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestGetOrDecode_ErrorNotCached(t *testing.T) {
	c := NewArchiveCache(4)
	boom := errors.New("boom")
	calls := 0
	failing := func([]byte) (*genie.Archive, error) {
		calls++
		return nil, boom
	}

	_, err := c.GetOrDecode([]byte("bad"), failing)
	assert.ErrorIs(t, err, boom)
	_, err = c.GetOrDecode([]byte("bad"), failing)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	_, ok := c.Get(Fingerprint([]byte("bad")))
	assert.False(t, ok)
}

func TestArchiveCache_Concurrent(t *testing.T) {
	c := NewArchiveCache(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := []byte{byte(i % 4)}
			a, err := c.GetOrDecode(data, func(b []byte) (*genie.Archive, error) {
				return &genie.Archive{Version: string(b)}, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, string(data), a.Version)
		}(i)
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, 16, hits+misses)
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Value())
}
