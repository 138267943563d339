// ABOUTME: LRU cache decorator for embedding backends keyed by input text
// ABOUTME: Repeated catalog loads and repeated search queries skip the remote call
package llm

import (
	"container/list"
	"context"
	"sync"
)

// CachedEmbedding memoises Embed results for the most recently used texts
type CachedEmbedding struct {
	inner    Embedding
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex

	hits   int
	misses int
}

type cacheEntry struct {
	key    string
	vector []float64
}

// CacheEmbedding wraps inner with an LRU cache holding up to size vectors.
// A size of zero or less returns a cache that stores nothing.
func CacheEmbedding(inner Embedding, size int) *CachedEmbedding {
	return &CachedEmbedding{
		inner:    inner,
		capacity: size,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Embed returns a cached vector when present, otherwise calls the inner backend.
// Errors are never cached.
func (c *CachedEmbedding) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := c.get(text); ok {
		return v, nil
	}

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.set(text, v)
	return clone(v), nil
}

func (c *CachedEmbedding) CountTokens(text string) int {
	return c.inner.CountTokens(text)
}

// Stats returns hit and miss counts since creation
func (c *CachedEmbedding) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached vectors
func (c *CachedEmbedding) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *CachedEmbedding) get(key string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		c.hits++
		return clone(elem.Value.(*cacheEntry).vector), true
	}
	c.misses++
	return nil, false
}

func (c *CachedEmbedding) set(key string, vector []float64) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).vector = clone(vector)
		return
	}

	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, vector: clone(vector)})
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
