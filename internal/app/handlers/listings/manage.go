package listings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainlistings "flatfinder/internal/domain/listings"
	domainuser "flatfinder/internal/domain/user"
)

const (
	createListingKey = "listing.create"
	updateListingKey = "listing.update"
	reviewListingKey = "listing.review"
)

type DetailsInput struct {
	Title            string `json:"title" validate:"required,max=200"`
	Description      string `json:"description" validate:"max=5000"`
	Address          string `json:"address" validate:"required,max=300"`
	City             string `json:"city" validate:"required,max=120"`
	MonthlyRentCents int64  `json:"monthly_rent_cents" validate:"gte=0"`
	Rooms            int    `json:"rooms" validate:"gte=1,lte=50"`
}

func (in DetailsInput) details() domainlistings.Details {
	return domainlistings.Details{
		Title:            in.Title,
		Description:      in.Description,
		Address:          in.Address,
		City:             in.City,
		MonthlyRentCents: in.MonthlyRentCents,
		Rooms:            in.Rooms,
	}
}

type CreateListingCommand struct {
	Actor   actor.Actor
	Details DetailsInput
}

func (c CreateListingCommand) Key() string            { return createListingKey }
func (c CreateListingCommand) Principal() actor.Actor { return c.Actor }
func (c CreateListingCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleLandlord}
}

type UpdateListingCommand struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
	Details   DetailsInput
}

func (c UpdateListingCommand) Key() string            { return updateListingKey }
func (c UpdateListingCommand) Principal() actor.Actor { return c.Actor }
func (c UpdateListingCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleLandlord}
}

type ReviewListingCommand struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
	Status    string `validate:"required"`
	Note      string `validate:"max=1000"`
}

func (c ReviewListingCommand) Key() string            { return reviewListingKey }
func (c ReviewListingCommand) Principal() actor.Actor { return c.Actor }
func (c ReviewListingCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleAdmin}
}

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	NewID      func() string
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (dto.Listing, error) {
	id := uuid.NewString()
	if h.NewID != nil {
		id = h.NewID()
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:       domainlistings.ListingID(id),
		Landlord: domainlistings.LandlordID(cmd.Actor.UserID),
		Details:  cmd.Details.details(),
		Now:      support.Now(h.Now),
	})
	if err != nil {
		return dto.Listing{}, err
	}
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		return support.RecordEvents(ctx, h.Outbox, h.Encoder, listing)
	})
	if err != nil {
		return dto.Listing{}, err
	}
	return dto.MapListing(listing, true), nil
}

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (dto.Listing, error) {
	var out dto.Listing
	err := support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := support.OwnedListing(ctx, unit, cmd.ListingID, cmd.Actor)
		if err != nil {
			return err
		}
		if err := listing.UpdateDetails(cmd.Details.details(), support.Now(h.Now)); err != nil {
			return err
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
			return err
		}
		out = dto.MapListing(listing, true)
		return nil
	})
	return out, err
}

type ReviewListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *ReviewListingHandler) Handle(ctx context.Context, cmd ReviewListingCommand) (dto.Listing, error) {
	status, err := domainlistings.ParseStatus(cmd.Status)
	if err != nil {
		return dto.Listing{}, err
	}
	var out dto.Listing
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
		if err != nil {
			return err
		}
		if err := listing.Review(status, cmd.Note, support.Now(h.Now)); err != nil {
			return err
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
			return err
		}
		out = dto.MapListing(listing, true)
		return nil
	})
	return out, err
}

var _ commands.Handler[CreateListingCommand, dto.Listing] = (*CreateListingHandler)(nil)
var _ commands.Handler[UpdateListingCommand, dto.Listing] = (*UpdateListingHandler)(nil)
var _ commands.Handler[ReviewListingCommand, dto.Listing] = (*ReviewListingHandler)(nil)
