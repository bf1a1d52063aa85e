package availability

import (
	"context"
	"time"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	"flatfinder/internal/domain/shared/daterange"
	domainuser "flatfinder/internal/domain/user"
)

const (
	addEntryKey    = "availability.add"
	removeEntryKey = "availability.remove"
	replaceKey     = "availability.replace"
)

type RangeInput struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type AddEntryCommand struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
	From      time.Time
	To        time.Time
}

func (c AddEntryCommand) Key() string                      { return addEntryKey }
func (c AddEntryCommand) Principal() actor.Actor           { return c.Actor }
func (c AddEntryCommand) RequiredRoles() []domainuser.Role { return landlordRoles }

type RemoveEntryCommand struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
	Index     int    `validate:"gte=0"`
}

func (c RemoveEntryCommand) Key() string                      { return removeEntryKey }
func (c RemoveEntryCommand) Principal() actor.Actor           { return c.Actor }
func (c RemoveEntryCommand) RequiredRoles() []domainuser.Role { return landlordRoles }

type ReplaceCommand struct {
	Actor     actor.Actor
	ListingID string       `validate:"required"`
	Entries   []RangeInput `validate:"max=366"`
}

func (c ReplaceCommand) Key() string                      { return replaceKey }
func (c ReplaceCommand) Principal() actor.Actor           { return c.Actor }
func (c ReplaceCommand) RequiredRoles() []domainuser.Role { return landlordRoles }

var landlordRoles = []domainuser.Role{domainuser.RoleLandlord}

// EditorHandler applies availability edits for listing owners. Entries are
// normalized to check-in and check-out hours before they are stored, the same
// way booking requests are.
type EditorHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Policy     domainbooking.StayPolicy
	Now        func() time.Time
}

func (h *EditorHandler) HandleAdd(ctx context.Context, cmd AddEntryCommand) (dto.Availability, error) {
	entry, err := h.Policy.Normalize(cmd.From, cmd.To)
	if err != nil {
		return dto.Availability{}, err
	}
	return h.edit(ctx, cmd.ListingID, cmd.Actor, func(s *domainavailability.Schedule, now time.Time) error {
		return s.AddEntry(entry, now)
	})
}

func (h *EditorHandler) HandleRemove(ctx context.Context, cmd RemoveEntryCommand) (dto.Availability, error) {
	return h.edit(ctx, cmd.ListingID, cmd.Actor, func(s *domainavailability.Schedule, now time.Time) error {
		_, err := s.RemoveAt(cmd.Index, now)
		return err
	})
}

func (h *EditorHandler) HandleReplace(ctx context.Context, cmd ReplaceCommand) (dto.Availability, error) {
	entries := make([]daterange.DateRange, 0, len(cmd.Entries))
	for _, in := range cmd.Entries {
		entry, err := h.Policy.Normalize(in.From, in.To)
		if err != nil {
			return dto.Availability{}, err
		}
		entries = append(entries, entry)
	}
	return h.edit(ctx, cmd.ListingID, cmd.Actor, func(s *domainavailability.Schedule, now time.Time) error {
		return s.Replace(entries, now)
	})
}

func (h *EditorHandler) edit(ctx context.Context, listingID string, principal actor.Actor, mutate func(*domainavailability.Schedule, time.Time) error) (dto.Availability, error) {
	var out dto.Availability
	err := support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := support.OwnedListing(ctx, unit, listingID, principal)
		if err != nil {
			return err
		}
		schedule, err := unit.Availability().Schedule(ctx, listing.ID)
		if err != nil {
			return err
		}
		if err := mutate(schedule, support.Now(h.Now)); err != nil {
			return err
		}
		if err := unit.Availability().Save(ctx, schedule); err != nil {
			return err
		}
		if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, schedule); err != nil {
			return err
		}
		out = dto.MapAvailability(schedule, h.Policy.Location)
		return nil
	})
	return out, err
}
