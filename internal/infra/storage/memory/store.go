package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

var (
	ErrReadOnlyUnit = errors.New("memory: unit of work is read-only")
	ErrUnitClosed   = errors.New("memory: unit of work already finished")
	ErrDuplicateKey = errors.New("memory: duplicate key")
)

// Store keeps every aggregate in process memory. Write units run one at a
// time and their changes become visible on commit only.
type Store struct {
	writeSem chan struct{}
	mu       sync.RWMutex

	listings   map[domainlistings.ListingID]*domainlistings.Listing
	schedules  map[domainlistings.ListingID]*domainavailability.Schedule
	bookings   map[domainbooking.BookingID]*domainbooking.Booking
	complaints map[domaincomplaints.ComplaintID]*domaincomplaints.Complaint
	outbox     []*outboxEntry

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		writeSem:   make(chan struct{}, 1),
		listings:   make(map[domainlistings.ListingID]*domainlistings.Listing),
		schedules:  make(map[domainlistings.ListingID]*domainavailability.Schedule),
		bookings:   make(map[domainbooking.BookingID]*domainbooking.Booking),
		complaints: make(map[domaincomplaints.ComplaintID]*domaincomplaints.Complaint),
		now:        time.Now,
	}
}

// Begin starts a unit of work. A write unit waits for the previous one to
// finish and holds the write slot until Commit or Rollback.
func (s *Store) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if opts.ReadOnly {
		return &Unit{store: s, readOnly: true}, nil
	}
	select {
	case s.writeSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Unit{
		store:      s,
		listings:   make(map[domainlistings.ListingID]*domainlistings.Listing),
		schedules:  make(map[domainlistings.ListingID]*domainavailability.Schedule),
		bookings:   make(map[domainbooking.BookingID]*domainbooking.Booking),
		complaints: make(map[domaincomplaints.ComplaintID]*domaincomplaints.Complaint),
	}, nil
}

// Ping satisfies readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

var _ uow.UoWFactory = (*Store)(nil)
