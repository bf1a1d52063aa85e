package dto

import (
	"time"

	domainlistings "flatfinder/internal/domain/listings"
)

type Listing struct {
	ID               string    `json:"id"`
	LandlordID       string    `json:"landlord_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	MonthlyRentCents int64     `json:"monthly_rent_cents"`
	Rooms            int       `json:"rooms"`
	Photos           []string  `json:"photos"`
	Status           string    `json:"status"`
	ReviewNote       string    `json:"review_note,omitempty"`
	Transitions      []string  `json:"transitions,omitempty"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ListingCollection struct {
	Items  []Listing `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// MapListing renders a listing. Allowed status transitions are included only
// for owner and admin views.
func MapListing(l *domainlistings.Listing, withTransitions bool) Listing {
	photos := append([]string{}, l.Photos...)
	out := Listing{
		ID:               string(l.ID),
		LandlordID:       string(l.Landlord),
		Title:            l.Title,
		Description:      l.Description,
		Address:          l.Address,
		City:             l.City,
		MonthlyRentCents: l.MonthlyRentCents,
		Rooms:            l.Rooms,
		Photos:           photos,
		Status:           string(l.Status),
		ReviewNote:       l.ReviewNote,
		Version:          l.Version,
		CreatedAt:        l.CreatedAt.UTC(),
		UpdatedAt:        l.UpdatedAt.UTC(),
	}
	if withTransitions {
		for _, s := range domainlistings.AllowedTransitions(l.Status) {
			out.Transitions = append(out.Transitions, string(s))
		}
	}
	return out
}

func MapListingCollection(res domainlistings.SearchResult, params domainlistings.SearchParams, withTransitions bool) ListingCollection {
	items := make([]Listing, 0, len(res.Items))
	for _, l := range res.Items {
		items = append(items, MapListing(l, withTransitions))
	}
	return ListingCollection{Items: items, Total: res.Total, Limit: params.Limit, Offset: params.Offset}
}
