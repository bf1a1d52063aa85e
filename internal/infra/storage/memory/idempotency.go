package memory

import (
	"context"
	"sync"
	"time"

	"flatfinder/internal/app/middleware"
)

// IdempotencyStore keeps command results in memory until they expire.
type IdempotencyStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]middleware.IdempotencyRecord
	now   func() time.Time
}

// NewIdempotencyStore keeps records for ttl. Zero keeps them forever.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, items: make(map[string]middleware.IdempotencyRecord), now: time.Now}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.live(key)
	return rec, ok, nil
}

// Save keeps the first live record for a key.
func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(rec.Key); !ok {
		s.items[rec.Key] = rec
	}
	return nil
}

// live returns the record under key, evicting it once expired. Callers hold mu.
func (s *IdempotencyStore) live(key string) (middleware.IdempotencyRecord, bool) {
	rec, ok := s.items[key]
	if !ok {
		return middleware.IdempotencyRecord{}, false
	}
	if s.ttl > 0 && s.now().Sub(rec.OccurredAt) > s.ttl {
		delete(s.items, key)
		return middleware.IdempotencyRecord{}, false
	}
	return rec, true
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
