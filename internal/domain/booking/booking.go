package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
	"flatfinder/internal/domain/shared/events"
)

var (
	ErrIDRequired      = errors.New("booking: id is required")
	ErrListingRequired = errors.New("booking: listing id is required")
	ErrUserRequired    = errors.New("booking: user id is required")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

// Booking is an append-only reservation of a listing by a consultant.
type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	UserID    string
	Range     daterange.DateRange
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	UserID    string
	Range     daterange.DateRange
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		UserID:    strings.TrimSpace(params.UserID),
		Range:     params.Range.UTC(),
		CreatedAt: now.UTC(),
	}
	b.Record(BookingCreated{BookingID: b.ID, ListingID: b.ListingID, UserID: b.UserID, Range: b.Range, At: b.CreatedAt})
	return b, nil
}
