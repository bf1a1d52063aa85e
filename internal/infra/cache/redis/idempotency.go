package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"flatfinder/internal/app/middleware"
)

// IdempotencyStore keeps successful command results for ttl.
type IdempotencyStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewIdempotencyStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{rdb: rdb, prefix: prefixed(prefix, "idem"), ttl: ttl}
}

type idempotencyValue struct {
	Fingerprint string    `json:"fingerprint,omitempty"`
	Payload     []byte    `json:"payload"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	var v idempotencyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{Key: key, Fingerprint: v.Fingerprint, Payload: v.Payload, OccurredAt: v.OccurredAt}, true, nil
}

// Save keeps the first record written for a key.
func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	payload, err := json.Marshal(idempotencyValue{Fingerprint: rec.Fingerprint, Payload: rec.Payload, OccurredAt: rec.OccurredAt})
	if err != nil {
		return err
	}
	return s.rdb.SetNX(ctx, s.prefix+":"+rec.Key, payload, s.ttl).Err()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
