package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/genietools/genie-dat/pkg/genie"
)

// DecodeFunc produces an archive from compressed bytes.
type DecodeFunc func(compressed []byte) (*genie.Archive, error)

// Fingerprint identifies archive contents. It keys the cache and is stored
// alongside exported archives.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ArchiveCache keeps recently decoded archives keyed by the fingerprint of
// their compressed bytes. Admission is TinyLFU, so a one-off file does not
// push out archives decoded repeatedly. Cached archives are shared and must
// be treated as read-only.
//
// A nil *ArchiveCache is valid and caches nothing.
type ArchiveCache struct {
	mu     sync.Mutex
	lfu    *tinylfu.T[uint64, *genie.Archive]
	hits   SafeCounter
	misses SafeCounter
}

// NewArchiveCache returns a cache holding up to size archives, or nil when
// size is not positive.
func NewArchiveCache(size int) *ArchiveCache {
	if size <= 0 {
		return nil
	}
	return &ArchiveCache{
		lfu: tinylfu.New[uint64, *genie.Archive](size, size*10, func(k uint64) uint64 { return k }),
	}
}

// Get returns the archive cached under fingerprint.
func (c *ArchiveCache) Get(fingerprint uint64) (*genie.Archive, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(fingerprint)
}

// Add stores an archive under fingerprint.
func (c *ArchiveCache) Add(fingerprint uint64, a *genie.Archive) {
	if c == nil || a == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lfu.Add(fingerprint, a)
}

// GetOrDecode returns the cached archive for data or decodes and caches it.
// Decoding runs outside the lock; two goroutines missing on the same bytes
// both decode and the later Add wins.
func (c *ArchiveCache) GetOrDecode(data []byte, decode DecodeFunc) (*genie.Archive, error) {
	if c == nil {
		return decode(data)
	}
	fp := Fingerprint(data)
	if a, ok := c.Get(fp); ok {
		c.hits.Inc()
		return a, nil
	}
	c.misses.Inc()
	a, err := decode(data)
	if err != nil {
		return nil, err
	}
	c.Add(fp, a)
	return a, nil
}

// Stats returns hit and miss counts since creation.
func (c *ArchiveCache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Value(), c.misses.Value()
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
