package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"flatfinder/internal/domain/shared/events"
)

var (
	ErrIDRequired         = errors.New("listings: id is required")
	ErrLandlordRequired   = errors.New("listings: landlord is required")
	ErrTitleRequired      = errors.New("listings: title is required")
	ErrAddressRequired    = errors.New("listings: address and city are required")
	ErrRentNegative       = errors.New("listings: monthly rent must be non-negative")
	ErrRoomsInvalid       = errors.New("listings: rooms must be at least 1")
	ErrInvalidStatus      = errors.New("listings: unknown status")
	ErrInvalidTransition  = errors.New("listings: status transition not allowed")
	ErrListingNotFound    = errors.New("listings: not found")
	ErrListingNotBookable = errors.New("listings: listing is not open for booking")
	ErrConcurrentUpdate   = errors.New("listings: listing was modified concurrently")
	ErrPhotoURLRequired   = errors.New("listings: photo url is required")
)

type ListingID string
type LandlordID string

type Status string

const (
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusArchived      Status = "ARCHIVED"
)

var transitions = map[Status][]Status{
	StatusPendingReview: {StatusApproved, StatusRejected},
	StatusApproved:      {StatusArchived, StatusRejected},
	StatusRejected:      {StatusPendingReview},
}

// ParseStatus accepts any casing.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPendingReview, StatusApproved, StatusRejected, StatusArchived:
		return s, nil
	}
	return "", ErrInvalidStatus
}

// AllowedTransitions lists the statuses reachable from s.
func AllowedTransitions(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}

func canTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Listing struct {
	ID               ListingID
	Landlord         LandlordID
	Title            string
	Description      string
	Address          string
	City             string
	MonthlyRentCents int64
	Rooms            int
	Photos           []string
	Status           Status
	ReviewNote       string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type Details struct {
	Title            string
	Description      string
	Address          string
	City             string
	MonthlyRentCents int64
	Rooms            int
}

func (d Details) normalized() (Details, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	if d.Title == "" {
		return Details{}, ErrTitleRequired
	}
	if d.Address == "" || d.City == "" {
		return Details{}, ErrAddressRequired
	}
	if d.MonthlyRentCents < 0 {
		return Details{}, ErrRentNegative
	}
	if d.Rooms < 1 {
		return Details{}, ErrRoomsInvalid
	}
	return d, nil
}

type CreateParams struct {
	ID       ListingID
	Landlord LandlordID
	Details  Details
	Now      time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Landlord)) == "" {
		return nil, ErrLandlordRequired
	}
	details, err := params.Details.normalized()
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:        params.ID,
		Landlord:  params.Landlord,
		Status:    StatusPendingReview,
		Photos:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.apply(details)
	l.Record(ListingCreated{ListingID: l.ID, Landlord: l.Landlord, At: now})
	return l, nil
}

// UpdateDetails edits the listing. Reviewed listings go back to review.
func (l *Listing) UpdateDetails(d Details, now time.Time) error {
	if l.Status == StatusArchived {
		return ErrInvalidTransition
	}
	details, err := d.normalized()
	if err != nil {
		return err
	}
	l.apply(details)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	if l.Status != StatusPendingReview {
		return l.transition(StatusPendingReview, "", now)
	}
	return nil
}

// Review moves the listing through the admin workflow.
func (l *Listing) Review(to Status, note string, now time.Time) error {
	if !canTransition(l.Status, to) {
		return ErrInvalidTransition
	}
	return l.transition(to, note, now)
}

func (l *Listing) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrPhotoURLRequired
	}
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Bookable() bool {
	return l.Status == StatusApproved
}

func (l *Listing) OwnedBy(id string) bool {
	return id != "" && string(l.Landlord) == id
}

func (l *Listing) transition(to Status, note string, now time.Time) error {
	from := l.Status
	l.Status = to
	l.ReviewNote = strings.TrimSpace(note)
	l.UpdatedAt = now.UTC()
	l.Record(ListingStatusChanged{ListingID: l.ID, From: from, To: to, Note: l.ReviewNote, At: l.UpdatedAt})
	return nil
}

func (l *Listing) apply(d Details) {
	l.Title = d.Title
	l.Description = d.Description
	l.Address = d.Address
	l.City = d.City
	l.MonthlyRentCents = d.MonthlyRentCents
	l.Rooms = d.Rooms
}

// Clone copies the listing without its pending events.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	out := &Listing{
		ID:               l.ID,
		Landlord:         l.Landlord,
		Title:            l.Title,
		Description:      l.Description,
		Address:          l.Address,
		City:             l.City,
		MonthlyRentCents: l.MonthlyRentCents,
		Rooms:            l.Rooms,
		Photos:           append([]string{}, l.Photos...),
		Status:           l.Status,
		ReviewNote:       l.ReviewNote,
		Version:          l.Version,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	return out
}
