package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/middleware"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainbooking "flatfinder/internal/domain/booking"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
	domainuser "flatfinder/internal/domain/user"
)

const scheduleBookingKey = "booking.schedule"

// ScheduleBookingCommand asks for a stay on a listing. From and To are the
// client's picks; only their calendar days in Zone matter. Zone must be the
// stay policy's reference zone; nil means UTC.
type ScheduleBookingCommand struct {
	Actor           actor.Actor
	CommandID       string
	ListingID       string `validate:"required"`
	From            time.Time
	To              time.Time
	Zone            *time.Location
	IdempotencyKeyV string
}

func (c ScheduleBookingCommand) Key() string { return scheduleBookingKey }

func (c ScheduleBookingCommand) Principal() actor.Actor { return c.Actor }

func (c ScheduleBookingCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleConsultant}
}

func (c ScheduleBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return c.Actor.UserID + ":" + c.IdempotencyKeyV
}

// IdempotencyFingerprint identifies the requested stay by listing and its
// calendar days in Zone, which is all normalization keeps.
func (c ScheduleBookingCommand) IdempotencyFingerprint() string {
	return c.ListingID + "|" + stayDay(c.From, c.Zone) + "|" + stayDay(c.To, c.Zone)
}

func stayDay(t time.Time, zone *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return daterange.StartOfDay(t, zone).Format(time.DateOnly)
}

func (c ScheduleBookingCommand) ResultPrototype() any { return &ScheduleBookingResult{} }

type ScheduleBookingResult struct {
	Booking      dto.Booking      `json:"booking"`
	Availability dto.Availability `json:"availability"`
}

type ScheduleBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Policy     domainbooking.StayPolicy
	Now        func() time.Time
	NewID      func() string
}

// Handle runs the booking protocol: normalize the stay, check it against the
// published availability, then write the reduced availability and the booking
// in one unit of work. Incomplete input is rejected before any store access.
func (h *ScheduleBookingHandler) Handle(ctx context.Context, cmd ScheduleBookingCommand) (*ScheduleBookingResult, error) {
	stay, err := h.Policy.Normalize(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	now := support.Now(h.Now)
	if err := h.Policy.ValidateNotPast(stay, now); err != nil {
		return nil, err
	}

	var result *ScheduleBookingResult
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
		if err != nil {
			return err
		}
		if !listing.Bookable() {
			return domainlistings.ErrListingNotBookable
		}

		schedule, err := unit.Availability().Schedule(ctx, listing.ID)
		if err != nil {
			return err
		}
		if err := schedule.Reserve(stay, h.Policy.Location, now); err != nil {
			return err
		}

		booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:        domainbooking.BookingID(h.bookingID(cmd)),
			ListingID: listing.ID,
			UserID:    cmd.Actor.UserID,
			Range:     stay,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		if err := unit.Availability().Save(ctx, schedule); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return err
		}
		if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, schedule, booking); err != nil {
			return err
		}

		result = &ScheduleBookingResult{
			Booking:      dto.MapBooking(booking, listing, h.Policy.Location),
			Availability: dto.MapAvailability(schedule, h.Policy.Location),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *ScheduleBookingHandler) bookingID(cmd ScheduleBookingCommand) string {
	if cmd.CommandID != "" {
		return cmd.CommandID
	}
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ commands.Handler[ScheduleBookingCommand, *ScheduleBookingResult] = (*ScheduleBookingHandler)(nil)
var _ middleware.IdempotentCommand = ScheduleBookingCommand{}
