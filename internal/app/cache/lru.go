package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry is a cached transcript. The cache owns its entries exclusively and
// mutates them on every read (timestamp refresh plus access count).
type Entry struct {
	Transcript  string    `json:"transcript"`
	Confidence  float64   `json:"confidence"`
	Timestamp   time.Time `json:"timestamp"`
	AccessCount int       `json:"access_count"`
}

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	Utilization float64 `json:"utilization"`
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
}

type lruItem struct {
	key   string
	entry Entry
}

// LRU is a TTL + least-recently-used cache of transcripts keyed by an opaque
// audio fingerprint. Size never exceeds maxSize.
type LRU struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = most recently used
	items   map[string]*list.Element
	hits    int64
	misses  int64
	now     func() time.Time
}

// NewLRU creates a cache with the given capacity and entry TTL.
func NewLRU(maxSize int, ttl time.Duration) *LRU {
	if maxSize <= 0 {
		maxSize = 50
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LRU{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		items:   make(map[string]*list.Element),
		now:     time.Now,
	}
}

// Get returns the entry for key if present and fresh. A hit refreshes both
// recency and the entry timestamp and increments its access count. An expired
// entry is deleted and counted as a miss.
func (c *LRU) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return Entry{}, false
	}

	item := elem.Value.(*lruItem)
	if c.expired(item.entry) {
		c.remove(elem)
		c.misses++
		return Entry{}, false
	}

	item.entry.Timestamp = c.now()
	item.entry.AccessCount++
	c.order.MoveToFront(elem)
	c.hits++

	return item.entry, true
}

// Has reports whether key holds a fresh entry without touching recency,
// access counts or hit/miss accounting.
func (c *LRU) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	return !c.expired(elem.Value.(*lruItem).entry)
}

// Set upserts an entry. Inserting a new key at capacity evicts exactly one
// least-recently-used entry first; updating an existing key never evicts.
func (c *LRU) Set(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = c.now()
	}

	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruItem).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	elem := c.order.PushFront(&lruItem{key: key, entry: entry})
	c.items[key] = elem
}

// Delete removes key if present.
func (c *LRU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// CleanExpired sweeps all TTL-expired entries and returns how many were removed.
func (c *LRU) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*lruItem).entry) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the current number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetStats returns a snapshot of size and hit/miss accounting. HitRate is 0
// when the cache has seen no accesses.
func (c *LRU) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:    c.order.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
	stats.Utilization = float64(stats.Size) / float64(stats.MaxSize)
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Clear drops all entries and resets hit/miss accounting.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.hits = 0
	c.misses = 0
}

func (c *LRU) expired(entry Entry) bool {
	return c.now().Sub(entry.Timestamp) >= c.ttl
}

func (c *LRU) remove(elem *list.Element) {
	item := elem.Value.(*lruItem)
	delete(c.items, item.key)
	c.order.Remove(elem)
}
