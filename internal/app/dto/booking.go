package dto

import (
	"time"

	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
)

type BookingListingSnapshot struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Address string `json:"address"`
	City    string `json:"city"`
	Photo   string `json:"photo,omitempty"`
}

type Booking struct {
	ID        string                  `json:"id"`
	ListingID string                  `json:"listing_id"`
	UserID    string                  `json:"user_id"`
	From      time.Time               `json:"from"`
	To        time.Time               `json:"to"`
	Nights    int                     `json:"nights"`
	CreatedAt time.Time               `json:"created_at"`
	Listing   *BookingListingSnapshot `json:"listing,omitempty"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking, listing *domainlistings.Listing, loc *time.Location) Booking {
	out := Booking{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		UserID:    b.UserID,
		From:      b.Range.From.UTC(),
		To:        b.Range.To.UTC(),
		Nights:    b.Range.Nights(loc),
		CreatedAt: b.CreatedAt.UTC(),
	}
	if listing != nil {
		snapshot := &BookingListingSnapshot{
			ID:      string(listing.ID),
			Title:   listing.Title,
			Address: listing.Address,
			City:    listing.City,
		}
		if len(listing.Photos) > 0 {
			snapshot.Photo = listing.Photos[0]
		}
		out.Listing = snapshot
	}
	return out
}
