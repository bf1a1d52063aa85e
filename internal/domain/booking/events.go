package booking

import (
	"time"

	"flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
)

type BookingCreated struct {
	BookingID BookingID
	ListingID listings.ListingID
	UserID    string
	Range     daterange.DateRange
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }
