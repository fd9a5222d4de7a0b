package slug

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded LRU cache with per-entry expiry for derived strings.
//
// # Thread Safety
//
// Safe for concurrent use. A single mutex guards the entry map and the LRU
// list; Get promotes entries, so it takes the write lock.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lru     *list.List
	options CacheOptions

	hits      int64
	misses    int64
	evictions int64
}

type cacheEntry struct {
	key       string
	value     string
	expiresAt time.Time
	element   *list.Element
}

// CacheOptions configures Cache.
type CacheOptions struct {
	// MaxEntries is the maximum number of cached values.
	// Default: 512
	MaxEntries int

	// TTL is how long an entry stays valid after it is stored. Zero disables expiry.
	// Default: 10 minutes
	TTL time.Duration

	// Now is the clock used for expiry. Default: time.Now
	Now func() time.Time
}

// DefaultCacheOptions returns the defaults used by NewCache.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		MaxEntries: 512,
		TTL:        10 * time.Minute,
		Now:        time.Now,
	}
}

// CacheOption is a functional option for configuring Cache.
type CacheOption func(*CacheOptions)

// WithMaxEntries sets the capacity. Non-positive values are ignored.
func WithMaxEntries(n int) CacheOption {
	return func(o *CacheOptions) {
		if n > 0 {
			o.MaxEntries = n
		}
	}
}

// WithTTL sets the expiry. Zero disables expiry; negative values are ignored.
func WithTTL(d time.Duration) CacheOption {
	return func(o *CacheOptions) {
		if d >= 0 {
			o.TTL = d
		}
	}
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) CacheOption {
	return func(o *CacheOptions) {
		if now != nil {
			o.Now = now
		}
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	options := DefaultCacheOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		lru:     list.New(),
		options: options,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}
	if c.expired(entry) {
		c.removeLocked(entry)
		c.misses++
		return "", false
	}
	c.lru.MoveToFront(entry.element)
	c.hits++
	return entry.value, true
}

// Put stores value under key, evicting the least recently used entry when full.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Time{}
	if c.options.TTL > 0 {
		expiresAt = c.options.Now().Add(c.options.TTL)
	}
	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.lru.MoveToFront(entry.element)
		return
	}

	for len(c.entries) >= c.options.MaxEntries {
		if !c.evictOldestLocked() {
			break
		}
	}

	entry := &cacheEntry{key: key, value: value, expiresAt: expiresAt}
	entry.element = c.lru.PushFront(entry)
	c.entries[key] = entry
}

// Len returns the number of stored entries, including ones that have expired
// but were not yet touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry. Statistics are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.lru.Init()
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// Stats returns a copy of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}

func (c *Cache) expired(entry *cacheEntry) bool {
	return !entry.expiresAt.IsZero() && !c.options.Now().Before(entry.expiresAt)
}

func (c *Cache) evictOldestLocked() bool {
	elem := c.lru.Back()
	if elem == nil {
		return false
	}
	c.removeLocked(elem.Value.(*cacheEntry))
	c.evictions++
	return true
}

func (c *Cache) removeLocked(entry *cacheEntry) {
	c.lru.Remove(entry.element)
	delete(c.entries, entry.key)
}
