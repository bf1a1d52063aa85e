// Package wiring registers every command and query handler on the buses and
// wraps them with the middleware pipeline.
package wiring

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	availabilityapp "flatfinder/internal/app/handlers/availability"
	bookingapp "flatfinder/internal/app/handlers/booking"
	complaintapp "flatfinder/internal/app/handlers/complaints"
	listingapp "flatfinder/internal/app/handlers/listings"
	"flatfinder/internal/app/middleware"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/queries"
	"flatfinder/internal/app/uow"
	domainbooking "flatfinder/internal/domain/booking"
)

type Deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Writer
	Idempotency middleware.IdempotencyStore
	Photos      listingapp.PhotoStore
	Location    *time.Location
	Logger      *slog.Logger
	Now         func() time.Time
	NewID       func() string
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func Build(d Deps) Buses {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	box := outbox.NewBuffered(d.Outbox)
	encoder := outbox.JSONEventEncoder{}
	policy := domainbooking.DefaultStayPolicy(d.Location)

	commandBus := commands.NewInMemoryBus()

	editor := &availabilityapp.EditorHandler{UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Policy: policy, Now: d.Now}
	commands.Register[availabilityapp.AddEntryCommand, dto.Availability](commandBus, commands.HandlerFunc[availabilityapp.AddEntryCommand, dto.Availability](editor.HandleAdd))
	commands.Register[availabilityapp.RemoveEntryCommand, dto.Availability](commandBus, commands.HandlerFunc[availabilityapp.RemoveEntryCommand, dto.Availability](editor.HandleRemove))
	commands.Register[availabilityapp.ReplaceCommand, dto.Availability](commandBus, commands.HandlerFunc[availabilityapp.ReplaceCommand, dto.Availability](editor.HandleReplace))

	commands.Register[bookingapp.ScheduleBookingCommand, *bookingapp.ScheduleBookingResult](commandBus, &bookingapp.ScheduleBookingHandler{
		UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Policy: policy, Now: d.Now, NewID: d.NewID,
	})

	commands.Register[listingapp.CreateListingCommand, dto.Listing](commandBus, &listingapp.CreateListingHandler{
		UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Now: d.Now, NewID: d.NewID,
	})
	commands.Register[listingapp.UpdateListingCommand, dto.Listing](commandBus, &listingapp.UpdateListingHandler{
		UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Now: d.Now,
	})
	commands.Register[listingapp.ReviewListingCommand, dto.Listing](commandBus, &listingapp.ReviewListingHandler{
		UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Now: d.Now,
	})
	commands.Register[listingapp.AddPhotoCommand, dto.Listing](commandBus, &listingapp.AddPhotoHandler{
		UoWFactory: d.UoWFactory, Store: d.Photos, Outbox: box, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})

	commands.Register[complaintapp.FileComplaintCommand, dto.Complaint](commandBus, &complaintapp.FileComplaintHandler{
		UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Now: d.Now, NewID: d.NewID,
	})
	commands.Register[complaintapp.TransitionComplaintCommand, dto.Complaint](commandBus, &complaintapp.TransitionComplaintHandler{
		UoWFactory: d.UoWFactory, Outbox: box, Encoder: encoder, Now: d.Now,
	})

	queryBus := queries.NewInMemoryBus()
	queries.Register[availabilityapp.GetAvailabilityQuery, dto.Availability](queryBus, &availabilityapp.GetAvailabilityHandler{UoWFactory: d.UoWFactory, Location: d.Location})
	queries.Register[bookingapp.ListingBookingsQuery, dto.BookingCollection](queryBus, &bookingapp.ListingBookingsHandler{UoWFactory: d.UoWFactory, Location: d.Location})
	queries.Register[bookingapp.MyBookingsQuery, dto.BookingCollection](queryBus, &bookingapp.MyBookingsHandler{UoWFactory: d.UoWFactory, Location: d.Location})
	queries.Register[listingapp.GetListingQuery, dto.Listing](queryBus, &listingapp.GetListingHandler{UoWFactory: d.UoWFactory})

	search := &listingapp.SearchHandler{UoWFactory: d.UoWFactory}
	queries.Register[listingapp.CatalogQuery, dto.ListingCollection](queryBus, queries.HandlerFunc[listingapp.CatalogQuery, dto.ListingCollection](search.HandleCatalog))
	queries.Register[listingapp.MyListingsQuery, dto.ListingCollection](queryBus, queries.HandlerFunc[listingapp.MyListingsQuery, dto.ListingCollection](search.HandleMine))
	queries.Register[listingapp.AdminListingsQuery, dto.ListingCollection](queryBus, queries.HandlerFunc[listingapp.AdminListingsQuery, dto.ListingCollection](search.HandleAdmin))
	queries.Register[complaintapp.ListComplaintsQuery, dto.ComplaintCollection](queryBus, &complaintapp.ListComplaintsHandler{UoWFactory: d.UoWFactory})

	validator := middleware.NewStructValidator()
	authorizer := middleware.RoleAuthorizer{}

	commandMiddleware := []middleware.CommandMiddleware{
		middleware.Logging(d.Logger),
		middleware.Validation(validator),
		middleware.Authorization(authorizer),
	}
	if d.Idempotency != nil {
		commandMiddleware = append(commandMiddleware, middleware.Idempotency(d.Idempotency, nil, d.Logger))
	}
	commandMiddleware = append(commandMiddleware,
		middleware.Transaction(d.UoWFactory, nil),
		middleware.OutboxFlush(box),
	)

	return Buses{
		Commands: middleware.ChainCommands(commandBus, commandMiddleware...),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryValidation(validator),
			middleware.QueryAuthorization(authorizer),
		),
	}
}
