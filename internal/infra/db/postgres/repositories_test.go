package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
	domainuser "flatfinder/internal/domain/user"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var listingCols = []string{"id", "landlord_id", "title", "description", "address", "city", "monthly_rent_cents", "rooms", "photos", "status", "review_note", "version", "created_at", "updated_at"}

func TestListingRepository_ByID(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("nominal", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(q("FROM listings WHERE id = $1")).
			WithArgs("l-1").
			WillReturnRows(pgxmock.NewRows(listingCols).
				AddRow("l-1", "u-1", "Loft", "", "Main st 1", "Berlin", int64(120000), 2, []string{"a.jpg"}, "APPROVED", "", int64(3), created, created))

		l, err := NewListingRepository(mock).ByID(context.Background(), "l-1")
		require.NoError(t, err)
		assert.Equal(t, domainlistings.StatusApproved, l.Status)
		assert.Equal(t, domainlistings.LandlordID("u-1"), l.Landlord)
		assert.Equal(t, int64(3), l.Version)
		assert.Equal(t, []string{"a.jpg"}, l.Photos)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(q("FROM listings WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := NewListingRepository(mock).ByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListingRepository_SaveVersionConflict(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q("WHERE listings.version = $12")).
		WithArgs("l-1", "u-1", "Loft", "", "Main st 1", "Berlin", int64(0), 1, []string{}, "PENDING_REVIEW", "", int64(4), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	l := &domainlistings.Listing{
		ID: "l-1", Landlord: "u-1", Title: "Loft", Address: "Main st 1", City: "Berlin",
		Rooms: 1, Photos: []string{}, Status: domainlistings.StatusPendingReview, Version: 4,
	}
	err := NewListingRepository(mock).Save(context.Background(), l)
	assert.ErrorIs(t, err, domainlistings.ErrConcurrentUpdate)
	assert.Equal(t, int64(4), l.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Search(t *testing.T) {
	mock := newMock(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("SELECT count(*) FROM listings WHERE status = ANY($1) AND lower(city) = $2")).
		WithArgs([]string{"APPROVED"}, "berlin").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("WHERE status = ANY($1) AND lower(city) = $2 ORDER BY created_at DESC, id LIMIT $3 OFFSET $4")).
		WithArgs([]string{"APPROVED"}, "berlin", 10, 0).
		WillReturnRows(pgxmock.NewRows(listingCols).
			AddRow("l-1", "u-1", "Loft", "", "Main st 1", "Berlin", int64(0), 1, []string{}, "APPROVED", "", int64(1), created, created))

	res, err := NewListingRepository(mock).Search(context.Background(), domainlistings.SearchParams{
		Statuses: []domainlistings.Status{domainlistings.StatusApproved},
		City:     " Berlin ",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, domainlistings.ListingID("l-1"), res.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepository_Schedule(t *testing.T) {
	t.Run("missing header yields empty schedule", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(q("FROM listing_availability WHERE listing_id = $1")).
			WithArgs("l-1").
			WillReturnError(pgx.ErrNoRows)

		s, err := NewAvailabilityRepository(mock).Schedule(context.Background(), "l-1")
		require.NoError(t, err)
		assert.Empty(t, s.Entries)
		assert.Equal(t, int64(0), s.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("entries keep their position order", func(t *testing.T) {
		mock := newMock(t)
		updated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		d := func(day int) time.Time { return time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC) }
		mock.ExpectQuery(q("FROM listing_availability WHERE listing_id = $1")).
			WithArgs("l-1").
			WillReturnRows(pgxmock.NewRows([]string{"version", "updated_at"}).AddRow(int64(2), updated))
		mock.ExpectQuery(q("FROM availability_entries")).
			WithArgs("l-1").
			WillReturnRows(pgxmock.NewRows([]string{"available_from", "available_to"}).
				AddRow(ptr(d(20)), ptr(d(25))).
				AddRow(ptr(d(1)), ptr(d(10))))

		s, err := NewAvailabilityRepository(mock).Schedule(context.Background(), "l-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), s.Version)
		assert.Equal(t, []daterange.DateRange{{From: d(20), To: d(25)}, {From: d(1), To: d(10)}}, s.Entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAvailabilityRepository_Save(t *testing.T) {
	from := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

	t.Run("rewrites entries", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(q("INSERT INTO listing_availability")).
			WithArgs("l-1", int64(1), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(q("DELETE FROM availability_entries WHERE listing_id = $1")).
			WithArgs("l-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectExec(q("INSERT INTO availability_entries")).
			WithArgs("l-1", 0, from, to).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		s := domainavailability.NewSchedule("l-1")
		s.Version = 1
		s.Entries = []daterange.DateRange{{From: from, To: to}}
		require.NoError(t, NewAvailabilityRepository(mock).Save(context.Background(), s))
		assert.Equal(t, int64(2), s.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(q("INSERT INTO listing_availability")).
			WithArgs("l-1", int64(0), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		s := domainavailability.NewSchedule("l-1")
		err := NewAvailabilityRepository(mock).Save(context.Background(), s)
		assert.ErrorIs(t, err, domainavailability.ErrConcurrentUpdate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_SaveDuplicate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO bookings")).
		WithArgs("b-1", "l-1", "u-2", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	b := &domainbooking.Booking{
		ID: "b-1", ListingID: "l-1", UserID: "u-2",
		Range: daterange.DateRange{From: time.Now(), To: time.Now().Add(48 * time.Hour)},
	}
	err := NewBookingRepository(mock).Save(context.Background(), b)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SaveDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WithArgs("u-1", "a@b.c", "Ann", "", "hash", []string{"consultant"}, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	u := &domainuser.User{ID: "u-1", Email: "a@b.c", Name: "Ann", PasswordHash: "hash", Roles: []domainuser.Role{domainuser.RoleConsultant}}
	err := NewUserRepository(mock).Save(context.Background(), u)
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxStore_ClaimEmpty(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("FOR UPDATE SKIP LOCKED")).
		WithArgs(stateClaimed, "worker-1", pgxmock.AnyArg(), stateNew, stateFailed).
		WillReturnError(pgx.ErrNoRows)

	rec, err := NewOutboxStore(mock).Claim(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_ReadOnlyUnit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectRollback()

	unit, err := Factory{Pool: mock}.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	require.NoError(t, unit.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr[T any](v T) *T { return &v }
