package index

import (
	"strings"
	"sync"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
)

// DefaultCacheSize bounds how many indexes a cache retains. One entry
// per distinct knowledge-base text; a handful covers an admin swapping
// between candidate documents.
const DefaultCacheSize = 8

// Cache memoises built indexes by content hash as an explicit,
// injectable component: the owner decides its lifetime, and concurrent
// chat requests against the same knowledge base share one build.
//
// Eviction is insertion-ordered: when the bound is exceeded the oldest
// entry goes first.
type Cache struct {
	mu      sync.RWMutex
	size    int
	entries map[string]*Index
	order   []string
}

// NewCache creates a bounded index cache. Sizes below 1 fall back to
// DefaultCacheSize.
func NewCache(size int) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &Cache{
		size:    size,
		entries: make(map[string]*Index, size),
	}
}

// Get returns the cached index for a content hash, if any.
func (c *Cache) Get(hash string) (*Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.entries[hash]
	return idx, ok
}

// Put stores an index under its content hash, evicting the oldest
// entry when the bound is exceeded. Storing an existing hash is a
// no-op: indexes are pure functions of their text.
func (c *Cache) Put(hash string, idx *Index) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[hash]; ok {
		return
	}
	c.entries[hash] = idx
	c.order = append(c.order, hash)

	for len(c.order) > c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached indexes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// BuildCached returns the index for chunks, building and storing it on
// a miss. The chunks' concatenated texts are hashed to form the key,
// so identical uploads never rebuild.
func (c *Cache) BuildCached(chunks []domain.Chunk) *Index {
	if len(chunks) == 0 {
		return Build(nil)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	hash := Hash(strings.Join(texts, "\n"))

	if idx, ok := c.Get(hash); ok {
		return idx
	}
	idx := Build(chunks)
	c.Put(hash, idx)
	return idx
}
