package cart

import (
	"sync"
	"time"
)

// SnapshotCache is the single-slot holder for the last known snapshot. It
// holds zero or one entry for the life of the synchronizer and is cleared
// explicitly on logout or order completion. With a positive TTL a stale
// entry reads as a miss; ttl zero disables expiry entirely.
type SnapshotCache struct {
	mu       sync.Mutex
	snapshot *Snapshot
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot, or nil on a miss. An expired entry is
// dropped and reported as a miss.
func (c *SnapshotCache) Get() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(c.storedAt) >= c.ttl {
		c.snapshot = nil
		return nil
	}
	return c.snapshot
}

// Set replaces the slot with the given snapshot. A nil snapshot clears it.
func (c *SnapshotCache) Set(snapshot *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.storedAt = c.now()
}

// Clear empties the slot.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
