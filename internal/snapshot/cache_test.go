package snapshot

import (
	"sync"
	"testing"
	"time"

	"solana-fee-forecast/internal/domain"
)

// fixedClock lets tests control the cache's notion of now.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fixedClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixedClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*TTLCache, *fixedClock) {
	clock := &fixedClock{now: time.Unix(1_700_000_000, 0)}
	c := NewTTLCache(ttl)
	c.now = clock.Now
	return c, clock
}

func snapAt(mint string, at time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		TokenMint:  mint,
		Orders:     []domain.ParsedOrder{{AccountKey: "a1"}},
		CapturedAt: at.UnixMilli(),
	}
}

func TestTTLCache_HitWithinTTL(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)
	c.Put(snapAt("mintA", clock.Now()))

	clock.Advance(30 * time.Second)

	got, ok := c.Get("mintA")
	if !ok {
		t.Fatal("expected cache hit within TTL")
	}
	if got.TokenMint != "mintA" {
		t.Errorf("unexpected mint %s", got.TokenMint)
	}
}

func TestTTLCache_MissAfterTTL(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)
	c.Put(snapAt("mintA", clock.Now()))

	clock.Advance(61 * time.Second)

	if _, ok := c.Get("mintA"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestTTLCache_MissOnDifferentMint(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)
	c.Put(snapAt("mintA", clock.Now()))

	if _, ok := c.Get("mintB"); ok {
		t.Error("expected miss for a different mint")
	}
}

func TestTTLCache_SecondMintEvictsFirst(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)
	c.Put(snapAt("mintA", clock.Now()))
	c.Put(snapAt("mintB", clock.Now()))

	if _, ok := c.Get("mintA"); ok {
		t.Error("expected mintA to be evicted by mintB")
	}
	if _, ok := c.Get("mintB"); !ok {
		t.Error("expected mintB to be cached")
	}
}

func TestTTLCache_ReplaceIsAtomic(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)
	c.Put(snapAt("mintA", clock.Now()))

	// Concurrent readers and writers must never observe a torn slot.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if snap, ok := c.Get("mintA"); ok {
					if snap.TokenMint != "mintA" || len(snap.Orders) != 1 {
						t.Error("observed inconsistent snapshot")
						return
					}
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				c.Put(snapAt("mintA", clock.Now()))
			}
		}()
	}
	wg.Wait()
}

func TestNoop_NeverHits(t *testing.T) {
	var c Noop
	c.Put(&domain.Snapshot{TokenMint: "mintA", CapturedAt: time.Now().UnixMilli()})
	if _, ok := c.Get("mintA"); ok {
		t.Error("Noop cache must never hit")
	}
}
