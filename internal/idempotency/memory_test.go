package idempotency

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeClock is a settable time source for deterministic TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...MemoryOption) *MemoryStore {
	t.Helper()
	return NewMemoryStore(zap.NewNop(), opts...)
}

func TestMemoryStore_MarkAndCheck(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if store.IsProcessed("evt-1") {
		t.Error("Expected evt-1 to be unprocessed before marking")
	}

	store.MarkProcessed("evt-1")

	if !store.IsProcessed("evt-1") {
		t.Error("Expected evt-1 to be processed after marking")
	}
	if store.Count() != 1 {
		t.Errorf("Expected count 1, got %d", store.Count())
	}
}

func TestMemoryStore_EmptyID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if store.IsProcessed("") {
		t.Error("Expected empty id to report unprocessed")
	}

	store.MarkProcessed("")
	if store.Count() != 0 {
		t.Errorf("Expected empty id to never be cached, count %d", store.Count())
	}

	reserved, err := store.CheckAndReserve(context.Background(), "")
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if !reserved {
		t.Error("Expected empty id to always win the reservation")
	}
	if store.Count() != 0 {
		t.Errorf("Expected empty id reservation to not be stored, count %d", store.Count())
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := newTestStore(t, WithTTL(time.Hour), WithClock(clock.Now))

	store.MarkProcessed("evt-ttl")
	if !store.IsProcessed("evt-ttl") {
		t.Fatal("Expected evt-ttl processed immediately after mark")
	}

	clock.Advance(59 * time.Minute)
	if !store.IsProcessed("evt-ttl") {
		t.Error("Expected evt-ttl still processed within TTL")
	}

	clock.Advance(2 * time.Minute)
	if store.IsProcessed("evt-ttl") {
		t.Error("Expected evt-ttl expired past TTL")
	}

	// An expired id is treated as brand new.
	reserved, err := store.CheckAndReserve(context.Background(), "evt-ttl")
	if err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if !reserved {
		t.Error("Expected expired id to be reservable again")
	}
}

func TestMemoryStore_CheckAndReserveIsAtomic(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reserved, err := store.CheckAndReserve(context.Background(), "evt-race")
			if err != nil {
				t.Errorf("CheckAndReserve returned error: %v", err)
				return
			}
			if reserved {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one reservation winner, got %d", winners)
	}
}

func TestMemoryStore_ReleaseKeepsEventRetryable(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	reserved, _ := store.CheckAndReserve(ctx, "evt-fail")
	if !reserved {
		t.Fatal("Expected first reservation to succeed")
	}

	if err := store.Release(ctx, "evt-fail"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	reserved, _ = store.CheckAndReserve(ctx, "evt-fail")
	if !reserved {
		t.Error("Expected released id to be reservable again")
	}
}

func TestMemoryStore_ReleaseDoesNotDropCommitted(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CheckAndReserve(ctx, "evt-done"); err != nil {
		t.Fatalf("CheckAndReserve returned error: %v", err)
	}
	if err := store.Commit(ctx, "evt-done"); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if err := store.Release(ctx, "evt-done"); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	if !store.IsProcessed("evt-done") {
		t.Error("Expected committed entry to survive a late release")
	}
}

func TestMemoryStore_SoftCapTriggersCleanup(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := newTestStore(t, WithTTL(time.Hour), WithMaxSize(3), WithClock(clock.Now))

	store.MarkProcessed("old-1")
	store.MarkProcessed("old-2")
	store.MarkProcessed("old-3")

	// Age the existing entries past the TTL, then insert: the sweep must
	// run before insertion and drop all three.
	clock.Advance(2 * time.Hour)
	store.MarkProcessed("new-1")

	if store.Count() != 1 {
		t.Errorf("Expected cleanup sweep before insert, count %d", store.Count())
	}
	if !store.IsProcessed("new-1") {
		t.Error("Expected new-1 processed after insert")
	}
}

func TestMemoryStore_SoftCapCanBeExceeded(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, WithTTL(time.Hour), WithMaxSize(3))

	// All entries are younger than the TTL, so the sweep removes nothing
	// and the cache grows past the nominal maximum.
	for i := 0; i < 5; i++ {
		store.MarkProcessed(fmt.Sprintf("evt-%d", i))
	}

	if store.Count() != 5 {
		t.Errorf("Expected soft cap to be exceeded with young entries, count %d", store.Count())
	}
}

func TestMemoryStore_CleanupAndClear(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := newTestStore(t, WithTTL(time.Minute), WithClock(clock.Now))

	store.MarkProcessed("evt-a")
	clock.Advance(2 * time.Minute)
	store.MarkProcessed("evt-b")

	removed := store.Cleanup(context.Background())
	if removed != 1 {
		t.Errorf("Expected 1 expired entry removed, got %d", removed)
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 entry remaining, got %d", store.Count())
	}

	store.Clear()
	if store.Count() != 0 {
		t.Errorf("Expected empty store after Clear, count %d", store.Count())
	}
}
