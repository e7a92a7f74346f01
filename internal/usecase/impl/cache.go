package impl

import (
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
)

type cacheEntry struct {
	catchment *geojson.FeatureCollection
	expiresAt time.Time
}

// fingerprintCache is a time-bounded cache of fetched catchment polygons
// keyed by the normalized request fingerprint. Entries are created on
// successful fetch only and evicted lazily: expiry is checked at lookup
// time, never by a background sweep, because entries are only ever
// consulted before a new fetch decision.
type fingerprintCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time // injectable for expiry tests
}

func newFingerprintCache(ttl time.Duration) *fingerprintCache {
	return &fingerprintCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached catchment for the fingerprint if it has not
// expired. An expired entry is removed and reported as a miss.
func (c *fingerprintCache) Get(fingerprint string) (*geojson.FeatureCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		delete(c.entries, fingerprint)

		return nil, false
	}

	return entry.catchment, true
}

// Put stores a freshly fetched catchment with a fixed TTL.
func (c *fingerprintCache) Put(fingerprint string, catchment *geojson.FeatureCollection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = cacheEntry{
		catchment: catchment,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len reports the number of entries including any not yet lazily evicted.
func (c *fingerprintCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
