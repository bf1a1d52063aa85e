package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/handlers/listings"
	"flatfinder/internal/app/middleware"
	"flatfinder/internal/app/queries"
	authsvc "flatfinder/internal/app/services/auth"
	domainavailability "flatfinder/internal/domain/availability"
	domainbooking "flatfinder/internal/domain/booking"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
	domainuser "flatfinder/internal/domain/user"
	"flatfinder/internal/infra/security"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorClass struct {
	status int
	code   string
}

var errorTable = []struct {
	errs  []error
	class errorClass
}{
	{[]error{daterange.ErrIncomplete}, errorClass{http.StatusBadRequest, "incomplete_range"}},
	{[]error{daterange.ErrInvalidRange}, errorClass{http.StatusBadRequest, "invalid_range"}},
	{[]error{domainbooking.ErrCheckInInPast}, errorClass{http.StatusBadRequest, "check_in_in_past"}},
	{[]error{
		middleware.ErrValidation,
		domainlistings.ErrInvalidStatus,
		domaincomplaints.ErrInvalidStatus,
		domainlistings.ErrTitleRequired,
		domainlistings.ErrAddressRequired,
		domainlistings.ErrRentNegative,
		domainlistings.ErrRoomsInvalid,
		domaincomplaints.ErrSubjectRequired,
		domainuser.ErrEmailRequired,
		domainuser.ErrNameRequired,
		domainuser.ErrInvalidRole,
		authsvc.ErrPasswordTooShort,
		security.ErrPasswordTooLong,
		authsvc.ErrRoleNotSelectable,
		listings.ErrPhotoTypeUnsupported,
	}, errorClass{http.StatusBadRequest, "validation_failed"}},
	{[]error{actor.ErrUnauthenticated, authsvc.ErrInvalidCredentials}, errorClass{http.StatusUnauthorized, "unauthenticated"}},
	{[]error{actor.ErrForbidden}, errorClass{http.StatusForbidden, "forbidden"}},
	{[]error{
		domainlistings.ErrListingNotFound,
		domaincomplaints.ErrNotFound,
		domainbooking.ErrBookingNotFound,
		domainavailability.ErrEntryNotFound,
		domainuser.ErrNotFound,
	}, errorClass{http.StatusNotFound, "not_found"}},
	{[]error{
		domainavailability.ErrConcurrentUpdate,
		domainlistings.ErrConcurrentUpdate,
	}, errorClass{http.StatusConflict, "version_conflict"}},
	{[]error{domainavailability.ErrOverlappingRange}, errorClass{http.StatusConflict, "overlapping_range"}},
	{[]error{domainlistings.ErrInvalidTransition, domaincomplaints.ErrInvalidTransition}, errorClass{http.StatusConflict, "invalid_transition"}},
	{[]error{domainlistings.ErrListingNotBookable}, errorClass{http.StatusConflict, "listing_not_bookable"}},
	{[]error{domainuser.ErrEmailAlreadyUsed}, errorClass{http.StatusConflict, "email_taken"}},
	{[]error{domainavailability.ErrRangeUnavailable}, errorClass{http.StatusUnprocessableEntity, "unavailable_range"}},
	{[]error{middleware.ErrIdempotencyKeyReused}, errorClass{http.StatusUnprocessableEntity, "idempotency_key_reused"}},
	{[]error{listings.ErrPhotoStorageUnavailable, commands.ErrNilBus, queries.ErrNilBus}, errorClass{http.StatusServiceUnavailable, "unavailable"}},
}

func classify(err error) errorClass {
	for _, row := range errorTable {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return row.class
			}
		}
	}
	return errorClass{http.StatusInternalServerError, "internal"}
}

// respondError maps err to a status and writes {"error","code"}. Internal
// errors are logged and hidden from the client.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	class := classify(err)
	message := err.Error()
	if class.status >= http.StatusInternalServerError {
		if logger != nil {
			fields := []any{"status", class.status, "error", err, "path", c.FullPath(), "request_id", c.GetString("request_id")}
			if p, ok := currentPrincipal(c); ok {
				fields = append(fields, "user_id", p.Actor.UserID)
			}
			logger.Error("request failed", fields...)
		}
		if class.status == http.StatusInternalServerError {
			message = "internal error"
		}
	}
	c.AbortWithStatusJSON(class.status, errorResponse{Error: message, Code: class.code})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
}
