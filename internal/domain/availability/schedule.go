package availability

import (
	"context"
	"errors"
	"time"

	"flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
	"flatfinder/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps with an existing entry")
	ErrEntryNotFound    = errors.New("availability: entry not found")
	ErrRangeUnavailable = errors.New("availability: requested range is not available")
	ErrConcurrentUpdate = errors.New("availability: schedule was modified concurrently")
)

// Schedule is the availability published by a landlord for one listing.
// Entries are kept raw, in the order the landlord entered them, and are
// written back wholesale.
type Schedule struct {
	ListingID listings.ListingID
	Entries   []daterange.DateRange
	Version   int64
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	// Schedule returns the stored schedule or an empty one at version 0.
	Schedule(ctx context.Context, id listings.ListingID) (*Schedule, error)
	// Save replaces the stored entries when the stored version matches
	// s.Version, then increments s.Version. A mismatch yields ErrConcurrentUpdate.
	Save(ctx context.Context, s *Schedule) error
}

func NewSchedule(id listings.ListingID) *Schedule {
	return &Schedule{ListingID: id, Entries: []daterange.DateRange{}}
}

// Merged is the normalized view of the published entries.
func (s *Schedule) Merged(loc *time.Location) []daterange.DateRange {
	return MergeAdjacent(s.Entries, loc)
}

// AddEntry appends r verbatim unless it pairwise-overlaps an existing entry.
func (s *Schedule) AddEntry(r daterange.DateRange, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if FirstOverlap(s.Entries, r) >= 0 {
		return ErrOverlappingRange
	}
	s.Entries = append(s.Entries, r)
	s.touch(now, "entry_added")
	return nil
}

// RemoveAt drops the entry at index.
func (s *Schedule) RemoveAt(index int, now time.Time) (daterange.DateRange, error) {
	if index < 0 || index >= len(s.Entries) {
		return daterange.DateRange{}, ErrEntryNotFound
	}
	removed := s.Entries[index]
	s.Entries = append(s.Entries[:index:index], s.Entries[index+1:]...)
	s.touch(now, "entry_removed")
	return removed, nil
}

// Replace swaps every entry for the provided set. The set must be complete
// and pairwise non-overlapping.
func (s *Schedule) Replace(entries []daterange.DateRange, now time.Time) error {
	next := make([]daterange.DateRange, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		if FirstOverlap(next, e) >= 0 {
			return ErrOverlappingRange
		}
		next = append(next, e)
	}
	s.Entries = next
	s.touch(now, "replaced")
	return nil
}

// Reserve checks that stay is covered by the published availability and, if
// so, replaces the entries with the availability minus stay.
func (s *Schedule) Reserve(stay daterange.DateRange, loc *time.Location, now time.Time) error {
	if err := stay.Validate(); err != nil {
		return err
	}
	if !Covered(s.Entries, stay, loc) {
		s.Record(ReservationRejected{ListingID: string(s.ListingID), Range: stay, At: now.UTC()})
		return ErrRangeUnavailable
	}
	s.Entries = Subtract(s.Entries, stay, loc)
	s.UpdatedAt = now.UTC()
	s.Record(RangeReserved{ListingID: string(s.ListingID), Range: stay, Remaining: len(s.Entries), At: s.UpdatedAt})
	return nil
}

func (s *Schedule) touch(now time.Time, reason string) {
	s.UpdatedAt = now.UTC()
	s.Record(ScheduleUpdated{ListingID: string(s.ListingID), Reason: reason, Entries: len(s.Entries), At: s.UpdatedAt})
}

// Clone copies the schedule without its pending events.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	return &Schedule{
		ListingID: s.ListingID,
		Entries:   append([]daterange.DateRange{}, s.Entries...),
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
}
