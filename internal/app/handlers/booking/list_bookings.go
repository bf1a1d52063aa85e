package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/queries"
	"flatfinder/internal/app/uow"
	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
	domainuser "flatfinder/internal/domain/user"
)

const (
	listingBookingsKey = "booking.by_listing"
	myBookingsKey      = "booking.mine"
)

// ListingBookingsQuery lists the bookings of a listing for its landlord.
type ListingBookingsQuery struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
}

func (q ListingBookingsQuery) Key() string            { return listingBookingsKey }
func (q ListingBookingsQuery) Principal() actor.Actor { return q.Actor }
func (q ListingBookingsQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleLandlord}
}

type MyBookingsQuery struct {
	Actor actor.Actor
}

func (q MyBookingsQuery) Key() string                      { return myBookingsKey }
func (q MyBookingsQuery) Principal() actor.Actor           { return q.Actor }
func (q MyBookingsQuery) RequiredRoles() []domainuser.Role { return nil }

type ListingBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Location   *time.Location
}

func (h *ListingBookingsHandler) Handle(ctx context.Context, q ListingBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	defer cleanup()

	listing, err := support.OwnedListing(ctx, unit, q.ListingID, q.Actor)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	bookings, err := unit.Bookings().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	sortByCheckIn(bookings)
	items := make([]dto.Booking, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.MapBooking(b, listing, h.Location))
	}
	return dto.BookingCollection{Items: items}, nil
}

type MyBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Location   *time.Location
}

func (h *MyBookingsHandler) Handle(ctx context.Context, q MyBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	defer cleanup()

	bookings, err := unit.Bookings().ListByUser(ctx, q.Actor.UserID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	sortByCheckIn(bookings)

	cache := make(map[domainlistings.ListingID]*domainlistings.Listing)
	items := make([]dto.Booking, 0, len(bookings))
	for _, b := range bookings {
		listing, ok := cache[b.ListingID]
		if !ok {
			listing, err = unit.Listings().ByID(ctx, b.ListingID)
			if err != nil && !errors.Is(err, domainlistings.ErrListingNotFound) {
				return dto.BookingCollection{}, err
			}
			cache[b.ListingID] = listing
		}
		items = append(items, dto.MapBooking(b, listing, h.Location))
	}
	return dto.BookingCollection{Items: items}, nil
}

func sortByCheckIn(bookings []*domainbooking.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Range.From.Before(bookings[j].Range.From)
	})
}

var _ queries.Handler[ListingBookingsQuery, dto.BookingCollection] = (*ListingBookingsHandler)(nil)
var _ queries.Handler[MyBookingsQuery, dto.BookingCollection] = (*MyBookingsHandler)(nil)
