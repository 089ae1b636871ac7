package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is long enough to absorb bursts of polling and short enough that a
// refreshed dashboard reflects a command's effect.
const DefaultTTL = 25 * time.Second

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// SnapshotCache holds recently aggregated snapshots keyed by VIN. All methods are
// safe for concurrent use.
type SnapshotCache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	lock    sync.Mutex
	entries map[string]entry
}

// New returns a SnapshotCache whose entries expire after ttl. A non-positive ttl
// disables caching: Put becomes a no-op and Get always misses.
func New(ttl time.Duration) *SnapshotCache {
	return NewWithClock(ttl, clockwork.NewRealClock())
}

// NewWithClock is New with an injectable clock. Tests use a fake clock to exercise
// expiry without sleeping.
func NewWithClock(ttl time.Duration, clock clockwork.Clock) *SnapshotCache {
	return &SnapshotCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the unexpired snapshot for vin, if any.
func (c *SnapshotCache) Get(vin string) (interface{}, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cached, ok := c.entries[vin]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(cached.expiresAt) {
		delete(c.entries, vin)
		return nil, false
	}
	return cached.value, true
}

// Put stores a snapshot for vin, replacing any previous entry.
func (c *SnapshotCache) Put(vin string, snapshot interface{}) {
	if c.ttl <= 0 {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entries[vin] = entry{value: snapshot, expiresAt: c.clock.Now().Add(c.ttl)}
}

// Clear drops all entries.
func (c *SnapshotCache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entries = make(map[string]entry)
}
