package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainavailability "flatfinder/internal/domain/availability"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
)

type AvailabilityRepository struct {
	q Querier
}

func NewAvailabilityRepository(q Querier) *AvailabilityRepository {
	return &AvailabilityRepository{q: q}
}

func (r *AvailabilityRepository) Schedule(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Schedule, error) {
	s := domainavailability.NewSchedule(id)
	var updatedAt time.Time
	err := r.q.QueryRow(ctx, `SELECT version, updated_at FROM listing_availability WHERE listing_id = $1`, string(id)).
		Scan(&s.Version, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	s.UpdatedAt = updatedAt.UTC()

	rows, err := r.q.Query(ctx, `
		SELECT available_from, available_to
		FROM availability_entries
		WHERE listing_id = $1
		ORDER BY position
	`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var from, to *time.Time
		if err := rows.Scan(&from, &to); err != nil {
			return nil, err
		}
		if from == nil || to == nil {
			continue
		}
		s.Entries = append(s.Entries, daterange.DateRange{From: from.UTC(), To: to.UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save replaces every entry of the schedule. The header row carries the
// version used for the optimistic check.
func (r *AvailabilityRepository) Save(ctx context.Context, s *domainavailability.Schedule) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO listing_availability (listing_id, version, updated_at)
		VALUES ($1, $2 + 1, $3)
		ON CONFLICT (listing_id) DO UPDATE SET
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE listing_availability.version = $2
	`, string(s.ListingID), s.Version, s.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainavailability.ErrConcurrentUpdate
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM availability_entries WHERE listing_id = $1`, string(s.ListingID)); err != nil {
		return err
	}
	for i, e := range s.Entries {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO availability_entries (listing_id, position, available_from, available_to)
			VALUES ($1, $2, $3, $4)
		`, string(s.ListingID), i, e.From.UTC(), e.To.UTC()); err != nil {
			return err
		}
	}
	s.Version++
	return nil
}

var _ domainavailability.Repository = (*AvailabilityRepository)(nil)
