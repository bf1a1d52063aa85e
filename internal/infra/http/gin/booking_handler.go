package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	bookingapp "flatfinder/internal/app/handlers/booking"
	"flatfinder/internal/app/queries"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHTTP interface {
	Create(c *gin.Context)
	ListForListing(c *gin.Context)
	Mine(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Location *time.Location
	Logger   *slog.Logger
}

func (h BookingHandler) Create(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	from, to, err := req.times(h.Location)
	if err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.ScheduleBookingCommand{
		Actor:           currentActor(c),
		CommandID:       uuid.NewString(),
		ListingID:       c.Param("id"),
		From:            from,
		To:              to,
		Zone:            h.Location,
		IdempotencyKeyV: c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[bookingapp.ScheduleBookingCommand, *bookingapp.ScheduleBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) ListForListing(c *gin.Context) {
	query := bookingapp.ListingBookingsQuery{Actor: currentActor(c), ListingID: c.Param("id")}
	result, err := queries.Ask[bookingapp.ListingBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Mine(c *gin.Context) {
	result, err := queries.Ask[bookingapp.MyBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, bookingapp.MyBookingsQuery{Actor: currentActor(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
