package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	complaintapp "flatfinder/internal/app/handlers/complaints"
	listingapp "flatfinder/internal/app/handlers/listings"
	"flatfinder/internal/app/queries"
)

type AdminHTTP interface {
	Listings(c *gin.Context)
	ReviewListing(c *gin.Context)
	Complaints(c *gin.Context)
	TransitionComplaint(c *gin.Context)
}

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h AdminHandler) Listings(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	query := listingapp.AdminListingsQuery{Actor: currentActor(c), Status: c.Query("status"), Filters: filters}
	result, err := queries.Ask[listingapp.AdminListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ReviewListing(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.ReviewListingCommand{Actor: currentActor(c), ListingID: c.Param("id"), Status: req.Status, Note: req.Note}
	result, err := commands.Dispatch[listingapp.ReviewListingCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) Complaints(c *gin.Context) {
	query := complaintapp.ListComplaintsQuery{Actor: currentActor(c), Status: c.Query("status"), ListingID: c.Query("listing_id")}
	result, err := queries.Ask[complaintapp.ListComplaintsQuery, dto.ComplaintCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) TransitionComplaint(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := complaintapp.TransitionComplaintCommand{Actor: currentActor(c), ComplaintID: c.Param("id"), Status: req.Status, Note: req.Note}
	result, err := commands.Dispatch[complaintapp.TransitionComplaintCommand, dto.Complaint](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
