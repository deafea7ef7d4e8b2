// Package cache holds a small LRU+TTL cache for retrieval results, so repeated
// questions within a session do not re-embed and re-search.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"docqa/internal/domain"
	"docqa/internal/port"
)

type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
}

type cacheEntry struct {
	passages  []domain.Passage
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string, k int) string {
	data := []byte(question)
	data = append(data, byte(k>>8), byte(k))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Get holds the write lock for the whole lookup: expiry deletion and the LRU
// move must see the same entry state, or a concurrent Put refreshing the key
// could be dropped.
func (c *QueryCache) Get(question string, k int) ([]domain.Passage, bool) {
	key := cacheKey(question, k)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return entry.passages, true
}

func (c *QueryCache) Put(question string, k int, passages []domain.Passage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, k)

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxSize {
			c.evictOldest()
		}
		c.order = append(c.order, key)
	} else {
		c.moveToEnd(key)
	}

	c.entries[key] = &cacheEntry{
		passages:  passages,
		timestamp: time.Now(),
		indexGen:  c.indexGen,
	}
}

// Invalidate drops everything. Called after ingestion changes the index.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedRetriever wraps a retriever with the cache.
type CachedRetriever struct {
	retriever port.Retriever
	cache     *QueryCache
}

func NewCachedRetriever(retriever port.Retriever, cache *QueryCache) *CachedRetriever {
	return &CachedRetriever{retriever: retriever, cache: cache}
}

func (r *CachedRetriever) Fetch(ctx context.Context, question string, k int) ([]domain.Passage, error) {
	if passages, ok := r.cache.Get(question, k); ok {
		return passages, nil
	}

	passages, err := r.retriever.Fetch(ctx, question, k)
	if err != nil {
		return nil, err
	}

	r.cache.Put(question, k, passages)
	return passages, nil
}
