package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
)

const bookingColumns = `id, listing_id, user_id, check_in, check_out, created_at`

type BookingRepository struct {
	q Querier
}

func NewBookingRepository(q Querier) *BookingRepository {
	return &BookingRepository{q: q}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	row := r.q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, err
}

// Save inserts the booking. Bookings are never rewritten.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(b.ID), string(b.ListingID), b.UserID, b.Range.From.UTC(), b.Range.To.UTC(), b.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: booking %s", ErrDuplicateKey, b.ID)
	}
	return err
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE listing_id = $1 ORDER BY check_in, id`, string(listingID))
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY check_in, id`, userID)
}

func (r *BookingRepository) list(ctx context.Context, query string, arg string) ([]*domainbooking.Booking, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domainbooking.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*domainbooking.Booking, error) {
	var (
		id, listingID, userID      string
		checkIn, checkOut, created time.Time
	)
	if err := row.Scan(&id, &listingID, &userID, &checkIn, &checkOut, &created); err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(id),
		ListingID: domainlistings.ListingID(listingID),
		UserID:    userID,
		Range:     daterange.DateRange{From: checkIn.UTC(), To: checkOut.UTC()},
		CreatedAt: created.UTC(),
	}, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
