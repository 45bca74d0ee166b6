// Package snapshot caches point-in-time order snapshots with a TTL.
package snapshot

import (
	"sync"
	"time"

	"solana-fee-forecast/internal/domain"
)

// DefaultTTL is the freshness window for a cached snapshot.
const DefaultTTL = 60 * time.Second

// Cache stores the most recent order snapshot. Implementations are owned by
// the caller's process lifetime and injected into the forecast service;
// there is no hidden global.
type Cache interface {
	// Get returns the cached snapshot for mint if one exists and is fresh.
	Get(mint string) (*domain.Snapshot, bool)

	// Put stores a fresh snapshot, atomically replacing any previous one.
	Put(snap *domain.Snapshot)
}

// TTLCache holds a single snapshot slot for the most recently stored mint.
// Storing a snapshot for a different mint evicts the previous one. Readers
// proceed concurrently under a read lock; a refresh replaces the slot under
// the write lock, so an in-flight reader keeps the old snapshot it already
// loaded. Two concurrent stale refreshes race harmlessly: both store
// equivalent fresh data.
type TTLCache struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	snap *domain.Snapshot
}

// NewTTLCache creates a cache with the given TTL. A non-positive ttl uses
// DefaultTTL.
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot if it matches mint and is still fresh.
func (c *TTLCache) Get(mint string) (*domain.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap == nil || c.snap.TokenMint != mint {
		return nil, false
	}

	age := c.now().UnixMilli() - c.snap.CapturedAt
	if age < 0 || age >= c.ttl.Milliseconds() {
		return nil, false
	}
	return c.snap, true
}

// Put stores snap as the single cached slot.
func (c *TTLCache) Put(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

var _ Cache = (*TTLCache)(nil)

// Noop is a Cache that never hits, for callers that opt out of caching.
type Noop struct{}

func (Noop) Get(string) (*domain.Snapshot, bool) { return nil, false }
func (Noop) Put(*domain.Snapshot)                {}

var _ Cache = Noop{}
