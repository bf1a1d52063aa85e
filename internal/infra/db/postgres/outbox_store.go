package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	appoutbox "flatfinder/internal/app/outbox"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

// OutboxStore writes event records through the transaction carried by ctx,
// so they commit together with the aggregates that raised them.
type OutboxStore struct {
	q   Querier
	now func() time.Time
}

func NewOutboxStore(q Querier) *OutboxStore {
	return &OutboxStore{q: q, now: time.Now}
}

func (s *OutboxStore) Append(ctx context.Context, records []appoutbox.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	q := querier(ctx, s.q)
	now := s.now().UTC()
	for _, rec := range records {
		headers := rec.Headers
		if headers == nil {
			headers = map[string]string{}
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO outbox (id, name, payload, occurred_at, aggregate, headers, state, next_attempt_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		`, rec.ID, rec.Name, rec.Payload, rec.OccurredAt.UTC(), rec.Aggregate, headers, stateNew, now); err != nil {
			return err
		}
	}
	return nil
}

// Claim locks the oldest due record. Concurrent relays skip rows already
// locked by another claim.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*appoutbox.Pending, error) {
	now := s.now().UTC()
	var (
		p       appoutbox.Pending
		headers map[string]string
	)
	err := s.q.QueryRow(ctx, `
		UPDATE outbox SET state = $1, claimed_by = $2, claimed_at = $3
		WHERE id = (
			SELECT id FROM outbox
			WHERE state IN ($4, $5) AND next_attempt_at <= $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, payload, occurred_at, aggregate, headers, attempts
	`, stateClaimed, workerID, now, stateNew, stateFailed).
		Scan(&p.ID, &p.Name, &p.Payload, &p.OccurredAt, &p.Aggregate, &headers, &p.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Headers = headers
	p.OccurredAt = p.OccurredAt.UTC()
	return &p, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.q.Exec(ctx, `UPDATE outbox SET state = $1, sent_at = $2 WHERE id = $3`, stateSent, s.now().UTC(), id)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.q.Exec(ctx, `
		UPDATE outbox SET state = $1, next_attempt_at = $2, last_error = $3, attempts = attempts + 1
		WHERE id = $4
	`, stateFailed, next.UTC(), errMsg, id)
	return err
}

var _ appoutbox.Writer = (*OutboxStore)(nil)
