package availability

import (
	"context"
	"time"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/queries"
	"flatfinder/internal/app/uow"
)

const getAvailabilityKey = "availability.get"

type GetAvailabilityQuery struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
}

func (q GetAvailabilityQuery) Key() string { return getAvailabilityKey }

type GetAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Location   *time.Location
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (dto.Availability, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	defer cleanup()

	listing, err := support.VisibleListing(ctx, unit, q.ListingID, q.Actor)
	if err != nil {
		return dto.Availability{}, err
	}
	schedule, err := unit.Availability().Schedule(ctx, listing.ID)
	if err != nil {
		return dto.Availability{}, err
	}
	return dto.MapAvailability(schedule, h.Location), nil
}

var _ queries.Handler[GetAvailabilityQuery, dto.Availability] = (*GetAvailabilityHandler)(nil)
