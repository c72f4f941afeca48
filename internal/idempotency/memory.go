package idempotency

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a processed event id is remembered.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxSize is the soft cap on cached entries. Reaching it
	// triggers a cleanup sweep before the next insert; entries younger
	// than the TTL are never evicted, so the cache can grow past it.
	DefaultMaxSize = 10000
)

type entry struct {
	processedAt time.Time
	pending     bool
}

// MemoryStore is a mutex-guarded, per-process idempotency store with
// time-based expiry. The clock is injectable for deterministic TTL tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	logger  *zap.Logger
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL overrides the entry TTL.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// WithMaxSize overrides the soft size cap.
func WithMaxSize(n int) MemoryOption {
	return func(s *MemoryStore) { s.maxSize = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-memory idempotency store.
func NewMemoryStore(logger *zap.Logger, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		maxSize: DefaultMaxSize,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAndReserve implements Store.
func (s *MemoryStore) CheckAndReserve(_ context.Context, id string) (bool, error) {
	if id == "" {
		s.logger.Warn("event_id_empty_cannot_check_idempotency")
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		if e.pending || s.now().Sub(e.processedAt) <= s.ttl {
			return false, nil
		}
		// Expired: the id reappearing after TTL is treated as new.
		delete(s.entries, id)
	}

	if len(s.entries) >= s.maxSize {
		s.cleanupLocked()
	}

	s.entries[id] = entry{processedAt: s.now(), pending: true}
	return true, nil
}

// IsProcessed reports whether id was marked processed and has not yet
// expired. Empty ids report false with a warning and are never cached.
func (s *MemoryStore) IsProcessed(id string) bool {
	if id == "" {
		s.logger.Warn("event_id_empty_cannot_check_idempotency")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.pending {
		return false
	}
	return s.now().Sub(e.processedAt) <= s.ttl
}

// MarkProcessed inserts or overwrites the processed marker for id with
// the current timestamp. A no-op for empty ids.
func (s *MemoryStore) MarkProcessed(id string) {
	if id == "" {
		s.logger.Warn("event_id_empty_cannot_mark_processed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok && len(s.entries) >= s.maxSize {
		s.cleanupLocked()
	}
	s.entries[id] = entry{processedAt: s.now()}
}

// Commit implements Store.
func (s *MemoryStore) Commit(_ context.Context, id string) error {
	if id == "" {
		s.logger.Warn("event_id_empty_cannot_mark_processed")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{processedAt: s.now()}
	return nil
}

// Release implements Store. Failed events are never cached so they stay
// retryable.
func (s *MemoryStore) Release(_ context.Context, id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok && e.pending {
		delete(s.entries, id)
	}
	return nil
}

// Cleanup implements Store.
func (s *MemoryStore) Cleanup(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked()
}

func (s *MemoryStore) cleanupLocked() int {
	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.processedAt) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("cleaned_up_expired_idempotency_entries", zap.Int("removed", removed))
	}
	return removed
}

// Count implements Store.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear implements Store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

var _ Store = (*MemoryStore)(nil)
