package listings

import (
	"time"
)

type ListingCreated struct {
	ListingID ListingID
	Landlord  LandlordID
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingUpdated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }

type ListingStatusChanged struct {
	ListingID ListingID
	From      Status
	To        Status
	Note      string
	At        time.Time
}

func (e ListingStatusChanged) EventName() string     { return "listing.status_changed" }
func (e ListingStatusChanged) AggregateID() string   { return string(e.ListingID) }
func (e ListingStatusChanged) OccurredAt() time.Time { return e.At }
