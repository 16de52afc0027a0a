package price

import (
	"sync"
	"time"
)

// CacheEntry is the content of the single cache slot.
type CacheEntry struct {
	Point     PricePoint
	FetchedAt time.Time
}

// Cache holds the last successfully resolved live price.
type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	entry *CacheEntry
}

func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

// Get returns the cached point only while it is younger than the TTL and positive.
func (c *Cache) Get() (PricePoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil || !c.entry.Point.Usable() {
		return PricePoint{}, false
	}
	if c.now().Sub(c.entry.FetchedAt) >= c.ttl {
		return PricePoint{}, false
	}
	return c.entry.Point, true
}

// Latest returns the slot regardless of age.
func (c *Cache) Latest() (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return CacheEntry{}, false
	}
	return *c.entry, true
}

// Put replaces the slot and stamps it with the current time.
func (c *Cache) Put(p PricePoint) {
	c.PutAt(p, c.now())
}

// PutAt replaces the slot with an explicit fetch time, e.g. when restoring a
// persisted snapshot.
func (c *Cache) PutAt(p PricePoint, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &CacheEntry{Point: p, FetchedAt: fetchedAt}
}
