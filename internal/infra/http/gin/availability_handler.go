package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	availabilityapp "flatfinder/internal/app/handlers/availability"
	"flatfinder/internal/app/queries"
)

type AvailabilityHTTP interface {
	Get(c *gin.Context)
	Add(c *gin.Context)
	Replace(c *gin.Context)
	Remove(c *gin.Context)
}

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Location *time.Location
	Logger   *slog.Logger
}

type replaceAvailabilityRequest struct {
	Entries []rangeRequest `json:"entries"`
}

func (h AvailabilityHandler) Get(c *gin.Context) {
	query := availabilityapp.GetAvailabilityQuery{Actor: currentActor(c), ListingID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.GetAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Add(c *gin.Context) {
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
	cmd := availabilityapp.AddEntryCommand{Actor: currentActor(c), ListingID: c.Param("id"), From: from, To: to}
	result, err := commands.Dispatch[availabilityapp.AddEntryCommand, dto.Availability](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AvailabilityHandler) Replace(c *gin.Context) {
	var req replaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entries := make([]availabilityapp.RangeInput, 0, len(req.Entries))
	for i, e := range req.Entries {
		from, to, err := e.times(h.Location)
		if err != nil {
			badRequest(c, fmt.Errorf("entries[%d]: %w", i, err))
			return
		}
		entries = append(entries, availabilityapp.RangeInput{From: from, To: to})
	}
	cmd := availabilityapp.ReplaceCommand{Actor: currentActor(c), ListingID: c.Param("id"), Entries: entries}
	result, err := commands.Dispatch[availabilityapp.ReplaceCommand, dto.Availability](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Remove(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("index must be an integer"))
		return
	}
	cmd := availabilityapp.RemoveEntryCommand{Actor: currentActor(c), ListingID: c.Param("id"), Index: index}
	result, err := commands.Dispatch[availabilityapp.RemoveEntryCommand, dto.Availability](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
