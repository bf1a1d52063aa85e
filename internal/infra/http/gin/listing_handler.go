package ginserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	listingapp "flatfinder/internal/app/handlers/listings"
	"flatfinder/internal/app/queries"
)

const maxListingPhotoSizeBytes int64 = 10 * 1024 * 1024

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	AddPhoto(c *gin.Context)
	Mine(c *gin.Context)
}

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h ListingHandler) Catalog(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := queries.Ask[listingapp.CatalogQuery, dto.ListingCollection](c.Request.Context(), h.Queries, listingapp.CatalogQuery{Filters: filters})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	query := listingapp.GetListingQuery{Actor: currentActor(c), ListingID: c.Param("id")}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Create(c *gin.Context) {
	var req listingapp.DetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.CreateListingCommand{Actor: currentActor(c), Details: req}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/listings/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Update(c *gin.Context) {
	var req listingapp.DetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.UpdateListingCommand{Actor: currentActor(c), ListingID: c.Param("id"), Details: req}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddPhoto accepts a multipart "file" field.
func (h ListingHandler) AddPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("file is required: %w", err))
		return
	}
	if fileHeader.Size <= 0 {
		badRequest(c, errors.New("file is empty"))
		return
	}
	if fileHeader.Size > maxListingPhotoSizeBytes {
		badRequest(c, fmt.Errorf("file too large (max %d MB)", maxListingPhotoSizeBytes/1024/1024))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxListingPhotoSizeBytes+1))
	if err != nil {
		respondError(c, h.Logger, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	cmd := listingapp.AddPhotoCommand{
		Actor:       currentActor(c),
		ListingID:   c.Param("id"),
		ContentType: strings.ToLower(strings.TrimSpace(contentType)),
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[listingapp.AddPhotoCommand, dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Mine(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	query := listingapp.MyListingsQuery{Actor: currentActor(c), Status: c.Query("status"), Filters: filters}
	result, err := queries.Ask[listingapp.MyListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseFilters(c *gin.Context) (listingapp.Filters, error) {
	var (
		f   listingapp.Filters
		err error
	)
	f.City = strings.TrimSpace(c.Query("city"))
	if f.MaxRentCents, err = queryInt64(c, "max_rent_cents"); err != nil {
		return f, err
	}
	var v int64
	if v, err = queryInt64(c, "min_rooms"); err != nil {
		return f, err
	}
	f.MinRooms = int(v)
	if v, err = queryInt64(c, "limit"); err != nil {
		return f, err
	}
	f.Limit = int(v)
	if v, err = queryInt64(c, "offset"); err != nil {
		return f, err
	}
	f.Offset = int(v)
	return f, nil
}

func queryInt64(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

var _ ListingHTTP = ListingHandler{}
