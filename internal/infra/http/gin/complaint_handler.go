package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	complaintapp "flatfinder/internal/app/handlers/complaints"
)

type ComplaintHTTP interface {
	File(c *gin.Context)
}

type ComplaintHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type fileComplaintRequest struct {
	ListingID string `json:"listing_id"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (h ComplaintHandler) File(c *gin.Context) {
	var req fileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := complaintapp.FileComplaintCommand{
		Actor:     currentActor(c),
		ListingID: req.ListingID,
		Subject:   req.Subject,
		Body:      req.Body,
	}
	result, err := commands.Dispatch[complaintapp.FileComplaintCommand, dto.Complaint](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ComplaintHTTP = ComplaintHandler{}
