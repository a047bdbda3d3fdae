package router

import (
	"sync"
	"time"
)

// DedupCache suppresses repeated alerts sharing a dedup key within a
// cooldown window. Entries are never deleted: an expired entry is
// treated as absent and overwritten on the next claim.
//
// The cache is explicitly constructed and passed into the Router so the
// Router carries no hidden process-wide state and tests can run in
// parallel with isolated caches.
type DedupCache struct {
	mu       sync.Mutex
	entries  map[string]time.Time // dedup key -> expiry
	cooldown time.Duration
	now      func() time.Time
}

// NewDedupCache creates a cache with the given cooldown window.
func NewDedupCache(cooldown time.Duration) *DedupCache {
	return &DedupCache{
		entries:  make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Claim records a cooldown for key and reports whether the caller owns
// the dispatch. It returns false when an unexpired entry already exists.
// Check and record are one critical section, so a concurrent second
// claim during dispatch loses rather than racing to double-send.
func (c *DedupCache) Claim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if expiry, ok := c.entries[key]; ok && now.Before(expiry) {
		return false
	}
	c.entries[key] = now.Add(c.cooldown)
	return true
}

// Len returns the number of entries, expired ones included.
func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
