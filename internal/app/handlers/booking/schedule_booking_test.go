package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/actor"
	bookingapp "flatfinder/internal/app/handlers/booking"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
	domainuser "flatfinder/internal/domain/user"
	"flatfinder/internal/infra/storage/memory"
)

var (
	clock      = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	consultant = actor.Actor{UserID: "u-guest", Roles: []domainuser.Role{domainuser.RoleConsultant}}
	policy     = domainbooking.DefaultStayPolicy(time.UTC)
)

func june(d int) time.Time { return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC) }

func window(t *testing.T, from, to int) daterange.DateRange {
	t.Helper()
	dr, err := policy.Normalize(june(from), june(to))
	require.NoError(t, err)
	return dr
}

func seed(t *testing.T, store *memory.Store, status domainlistings.Status, entries ...daterange.DateRange) {
	t.Helper()
	ctx := context.Background()
	unit, err := store.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	ctx = uow.Bind(ctx, unit)

	l, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID: "l-1", Landlord: "u-host",
		Details: domainlistings.Details{Title: "Loft", Address: "Main 1", City: "Berlin", Rooms: 2},
		Now:     clock,
	})
	require.NoError(t, err)
	if status != domainlistings.StatusPendingReview {
		require.NoError(t, l.Review(status, "", clock))
	}
	require.NoError(t, unit.Listings().Save(ctx, l))

	s := domainavailability.NewSchedule(l.ID)
	s.Entries = entries
	require.NoError(t, unit.Availability().Save(ctx, s))
	require.NoError(t, unit.Commit(ctx))
}

func handler(factory uow.UoWFactory, store *memory.Store) *bookingapp.ScheduleBookingHandler {
	return &bookingapp.ScheduleBookingHandler{
		UoWFactory: factory,
		Outbox:     outbox.NewBuffered(store),
		Encoder:    outbox.JSONEventEncoder{},
		Policy:     policy,
		Now:        func() time.Time { return clock },
		NewID:      func() string { return "b-1" },
	}
}

func committedState(t *testing.T, store *memory.Store) (*domainavailability.Schedule, []*domainbooking.Booking) {
	t.Helper()
	ctx := context.Background()
	unit, err := store.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer func() { _ = unit.Rollback(ctx) }()
	s, err := unit.Availability().Schedule(ctx, "l-1")
	require.NoError(t, err)
	b, err := unit.Bookings().ListByListing(ctx, "l-1")
	require.NoError(t, err)
	return s, b
}

func TestScheduleBookingSplitsAvailability(t *testing.T) {
	store := memory.NewStore()
	full := daterange.DateRange{From: june(1), To: june(10)}
	seed(t, store, domainlistings.StatusApproved, full)

	// time of day from the client is ignored
	res, err := handler(store, store).Handle(context.Background(), bookingapp.ScheduleBookingCommand{
		Actor:     consultant,
		ListingID: "l-1",
		From:      june(3).Add(7 * time.Hour),
		To:        june(5).Add(22 * time.Hour),
	})
	require.NoError(t, err)

	stay := window(t, 3, 5)
	assert.Equal(t, "b-1", res.Booking.ID)
	assert.Equal(t, stay.From, res.Booking.From)
	assert.Equal(t, stay.To, res.Booking.To)
	assert.Equal(t, 2, res.Booking.Nights)

	schedule, bookings := committedState(t, store)
	assert.Equal(t, []daterange.DateRange{
		{From: full.From, To: stay.From},
		{From: stay.To, To: full.To},
	}, schedule.Entries)
	require.Len(t, bookings, 1)
	assert.Equal(t, "u-guest", bookings[0].UserID)

	names := []string{}
	for _, rec := range store.OutboxRecords() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"availability.reserved", "booking.created"}, names)
}

func TestScheduleBookingAcrossMergedEntries(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domainlistings.StatusApproved, window(t, 1, 5), window(t, 5, 10))

	_, err := handler(store, store).Handle(context.Background(), bookingapp.ScheduleBookingCommand{
		Actor: consultant, ListingID: "l-1", From: june(4), To: june(7),
	})
	require.NoError(t, err)

	schedule, _ := committedState(t, store)
	assert.Equal(t, []daterange.DateRange{
		{From: window(t, 1, 5).From, To: window(t, 4, 7).From},
		{From: window(t, 4, 7).To, To: window(t, 5, 10).To},
	}, schedule.Entries)
}

func TestScheduleBookingRejectsUnavailable(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domainlistings.StatusApproved)

	_, err := handler(store, store).Handle(context.Background(), bookingapp.ScheduleBookingCommand{
		Actor: consultant, ListingID: "l-1", From: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domainavailability.ErrRangeUnavailable)

	schedule, bookings := committedState(t, store)
	assert.Empty(t, schedule.Entries)
	assert.Equal(t, int64(1), schedule.Version)
	assert.Empty(t, bookings)
	assert.Empty(t, store.OutboxRecords())
}

func TestScheduleBookingValidatesInputBeforeStore(t *testing.T) {
	cases := map[string]struct {
		cmd  bookingapp.ScheduleBookingCommand
		want error
	}{
		"missing to":  {bookingapp.ScheduleBookingCommand{Actor: consultant, ListingID: "l-1", From: june(3)}, daterange.ErrIncomplete},
		"reversed":    {bookingapp.ScheduleBookingCommand{Actor: consultant, ListingID: "l-1", From: june(8), To: june(3)}, daterange.ErrInvalidRange},
		"in the past": {bookingapp.ScheduleBookingCommand{Actor: consultant, ListingID: "l-1", From: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), To: june(3)}, domainbooking.ErrCheckInInPast},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := handler(nil, memory.NewStore()).Handle(context.Background(), tc.cmd)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestScheduleBookingRequiresApprovedListing(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domainlistings.StatusPendingReview, window(t, 1, 10))

	_, err := handler(store, store).Handle(context.Background(), bookingapp.ScheduleBookingCommand{
		Actor: consultant, ListingID: "l-1", From: june(3), To: june(5),
	})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotBookable)

	_, err = handler(store, store).Handle(context.Background(), bookingapp.ScheduleBookingCommand{
		Actor: consultant, ListingID: "missing", From: june(3), To: june(5),
	})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
}

var errInsertFailed = errors.New("insert failed")

type failingFactory struct{ *memory.Store }

func (f failingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Store.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return failingUnit{UnitOfWork: unit}, nil
}

type failingUnit struct{ uow.UnitOfWork }

func (u failingUnit) Bookings() domainbooking.Repository {
	return failingBookings{Repository: u.UnitOfWork.Bookings()}
}

type failingBookings struct{ domainbooking.Repository }

func (failingBookings) Save(context.Context, *domainbooking.Booking) error { return errInsertFailed }

func TestScheduleBookingRollsBackWhenInsertFails(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domainlistings.StatusApproved, window(t, 1, 10))

	_, err := handler(failingFactory{store}, store).Handle(context.Background(), bookingapp.ScheduleBookingCommand{
		Actor: consultant, ListingID: "l-1", From: june(3), To: june(5),
	})
	assert.ErrorIs(t, err, errInsertFailed)

	schedule, bookings := committedState(t, store)
	assert.Equal(t, []daterange.DateRange{window(t, 1, 10)}, schedule.Entries, "availability untouched")
	assert.Empty(t, bookings)
}

func TestScheduleBookingSerializesConcurrentRequests(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, domainlistings.StatusApproved, window(t, 1, 10))

	ids := make(chan string, 2)
	ids <- "b-1"
	ids <- "b-2"
	h := handler(store, store)
	h.NewID = func() string { return <-ids }

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := h.Handle(context.Background(), bookingapp.ScheduleBookingCommand{
				Actor: consultant, ListingID: "l-1", From: june(3), To: june(6),
			})
			errs <- err
		}()
	}
	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], domainavailability.ErrRangeUnavailable)

	_, bookings := committedState(t, store)
	assert.Len(t, bookings, 1)
}

func TestFingerprintFollowsReferenceDays(t *testing.T) {
	minusOne := time.FixedZone("-01:00", -3600)
	plusTwo := time.FixedZone("+02:00", 2*3600)
	base := bookingapp.ScheduleBookingCommand{ListingID: "l-1", From: june(3), To: june(5), Zone: time.UTC}

	// 23:30 at -01:00 is already June 4 in UTC, so the stay differs.
	lateEvening := base
	lateEvening.From = time.Date(2024, time.June, 3, 23, 30, 0, 0, minusOne)
	stay, err := policy.Normalize(lateEvening.From, lateEvening.To)
	require.NoError(t, err)
	assert.Equal(t, 4, stay.From.Day())
	assert.NotEqual(t, base.IdempotencyFingerprint(), lateEvening.IdempotencyFingerprint())

	// One instant written with two offsets is the same request.
	utcLate := base
	utcLate.From = time.Date(2024, time.June, 2, 23, 0, 0, 0, time.UTC)
	shifted := utcLate
	shifted.From = utcLate.From.In(plusTwo)
	assert.Equal(t, utcLate.IdempotencyFingerprint(), shifted.IdempotencyFingerprint())

	noZone := base
	noZone.Zone = nil
	assert.Equal(t, base.IdempotencyFingerprint(), noZone.IdempotencyFingerprint())
}
