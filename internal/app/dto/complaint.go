package dto

import (
	"time"

	domaincomplaints "flatfinder/internal/domain/complaints"
)

type Complaint struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	ReporterID string    `json:"reporter_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Status     string    `json:"status"`
	AdminNote  string    `json:"admin_note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ComplaintCollection struct {
	Items []Complaint `json:"items"`
}

func MapComplaint(c *domaincomplaints.Complaint) Complaint {
	return Complaint{
		ID:         string(c.ID),
		ListingID:  string(c.ListingID),
		ReporterID: c.ReporterID,
		Subject:    c.Subject,
		Body:       c.Body,
		Status:     string(c.Status),
		AdminNote:  c.AdminNote,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
	}
}
