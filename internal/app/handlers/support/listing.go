package support

import (
	"context"
	"time"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/events"
)

// OwnedListing loads a listing the principal may manage: its landlord or an admin.
func OwnedListing(ctx context.Context, unit uow.UnitOfWork, id string, principal actor.Actor) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, err
	}
	if principal.IsAdmin() || listing.OwnedBy(principal.UserID) {
		return listing, nil
	}
	return nil, actor.ErrForbidden
}

// VisibleListing loads a listing the principal may see. Listings that are not
// approved are hidden from everyone but their landlord and admins.
func VisibleListing(ctx context.Context, unit uow.UnitOfWork, id string, principal actor.Actor) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, err
	}
	if listing.Bookable() || principal.IsAdmin() || listing.OwnedBy(principal.UserID) {
		return listing, nil
	}
	return nil, domainlistings.ErrListingNotFound
}

// RecordEvents drains the sources into the outbox.
func RecordEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, sources ...events.Source) error {
	return outbox.RecordDomainEvents(ctx, box, encoder, events.Drain(sources...))
}

func Now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}
