package complaints

import (
	"context"
	"errors"
	"strings"
	"time"

	"flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/events"
)

var (
	ErrIDRequired        = errors.New("complaints: id is required")
	ErrListingRequired   = errors.New("complaints: listing id is required")
	ErrReporterRequired  = errors.New("complaints: reporter is required")
	ErrSubjectRequired   = errors.New("complaints: subject is required")
	ErrInvalidStatus     = errors.New("complaints: unknown status")
	ErrInvalidTransition = errors.New("complaints: status transition not allowed")
	ErrNotFound          = errors.New("complaints: not found")
)

type ComplaintID string

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusInReview  Status = "IN_REVIEW"
	StatusResolved  Status = "RESOLVED"
	StatusDismissed Status = "DISMISSED"
)

var transitions = map[Status][]Status{
	StatusOpen:     {StatusInReview, StatusDismissed},
	StatusInReview: {StatusResolved, StatusDismissed},
}

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusOpen, StatusInReview, StatusResolved, StatusDismissed:
		return s, nil
	}
	return "", ErrInvalidStatus
}

type Complaint struct {
	ID         ComplaintID
	ListingID  listings.ListingID
	ReporterID string
	Subject    string
	Body       string
	Status     Status
	AdminNote  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

type ListParams struct {
	Status    Status
	ListingID listings.ListingID
}

type Repository interface {
	ByID(ctx context.Context, id ComplaintID) (*Complaint, error)
	Save(ctx context.Context, complaint *Complaint) error
	List(ctx context.Context, params ListParams) ([]*Complaint, error)
}

type FileParams struct {
	ID         ComplaintID
	ListingID  listings.ListingID
	ReporterID string
	Subject    string
	Body       string
	Now        time.Time
}

func File(params FileParams) (*Complaint, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	if strings.TrimSpace(params.ReporterID) == "" {
		return nil, ErrReporterRequired
	}
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	now := params.Now.UTC()
	c := &Complaint{
		ID:         params.ID,
		ListingID:  params.ListingID,
		ReporterID: strings.TrimSpace(params.ReporterID),
		Subject:    subject,
		Body:       strings.TrimSpace(params.Body),
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	c.Record(ComplaintFiled{ComplaintID: c.ID, ListingID: c.ListingID, At: now})
	return c, nil
}

func (c *Complaint) Transition(to Status, note string, now time.Time) error {
	allowed := false
	for _, s := range transitions[c.Status] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTransition
	}
	from := c.Status
	c.Status = to
	c.AdminNote = strings.TrimSpace(note)
	c.UpdatedAt = now.UTC()
	c.Record(ComplaintStatusChanged{ComplaintID: c.ID, From: from, To: to, At: c.UpdatedAt})
	return nil
}

func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	out.EventRecorder = events.EventRecorder{}
	return &out
}

type ComplaintFiled struct {
	ComplaintID ComplaintID
	ListingID   listings.ListingID
	At          time.Time
}

func (e ComplaintFiled) EventName() string     { return "complaint.filed" }
func (e ComplaintFiled) AggregateID() string   { return string(e.ComplaintID) }
func (e ComplaintFiled) OccurredAt() time.Time { return e.At }

type ComplaintStatusChanged struct {
	ComplaintID ComplaintID
	From        Status
	To          Status
	At          time.Time
}

func (e ComplaintStatusChanged) EventName() string     { return "complaint.status_changed" }
func (e ComplaintStatusChanged) AggregateID() string   { return string(e.ComplaintID) }
func (e ComplaintStatusChanged) OccurredAt() time.Time { return e.At }
