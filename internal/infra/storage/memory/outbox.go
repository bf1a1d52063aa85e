package memory

import (
	"context"
	"time"

	appoutbox "flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxSent    = "SENT"
	outboxFailed  = "FAILED"
)

type outboxEntry struct {
	record      appoutbox.EventRecord
	state       string
	attempts    int
	nextAttempt time.Time
	claimedBy   string
	lastError   string
}

func newOutboxEntry(rec appoutbox.EventRecord, now time.Time) *outboxEntry {
	return &outboxEntry{record: rec, state: outboxNew, nextAttempt: now}
}

// Append stages records in the write unit carried by ctx, or stores them
// directly when there is none.
func (s *Store) Append(ctx context.Context, records []appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if mu, ok := unit.(*Unit); ok && mu.store == s {
			if err := mu.writable(); err != nil {
				return err
			}
			mu.outbox = append(mu.outbox, records...)
			return nil
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	for _, rec := range records {
		s.outbox = append(s.outbox, newOutboxEntry(rec, now))
	}
	return nil
}

// Claim hands the oldest due record to workerID, or nil when nothing is due.
func (s *Store) Claim(ctx context.Context, workerID string) (*appoutbox.Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	for _, e := range s.outbox {
		if e.state != outboxNew && e.state != outboxFailed {
			continue
		}
		if e.nextAttempt.After(now) {
			continue
		}
		e.state = outboxClaimed
		e.claimedBy = workerID
		return &appoutbox.Pending{EventRecord: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.findOutbox(id); e != nil {
		e.state = outboxSent
	}
	return nil
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.findOutbox(id); e != nil {
		e.state = outboxFailed
		e.attempts++
		e.nextAttempt = next
		e.lastError = errMsg
	}
	return nil
}

// OutboxRecords lists every stored record in insertion order.
func (s *Store) OutboxRecords() []appoutbox.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]appoutbox.EventRecord, 0, len(s.outbox))
	for _, e := range s.outbox {
		out = append(out, e.record)
	}
	return out
}

func (s *Store) findOutbox(id string) *outboxEntry {
	for _, e := range s.outbox {
		if e.record.ID == id {
			return e
		}
	}
	return nil
}

var _ appoutbox.Writer = (*Store)(nil)
