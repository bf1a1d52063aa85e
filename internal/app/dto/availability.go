package dto

import (
	"time"

	domainavailability "flatfinder/internal/domain/availability"
	"flatfinder/internal/domain/shared/daterange"
)

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Availability carries the raw entries (indexable for removal) together with
// their merged view.
type Availability struct {
	ListingID string      `json:"listing_id"`
	Entries   []DateRange `json:"entries"`
	Merged    []DateRange `json:"merged"`
	Version   int64       `json:"version"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

func MapDateRange(r daterange.DateRange) DateRange {
	return DateRange{From: r.From.UTC(), To: r.To.UTC()}
}

func MapDateRanges(ranges []daterange.DateRange) []DateRange {
	out := make([]DateRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, MapDateRange(r))
	}
	return out
}

func MapAvailability(s *domainavailability.Schedule, loc *time.Location) Availability {
	if s == nil {
		return Availability{Entries: []DateRange{}, Merged: []DateRange{}}
	}
	out := Availability{
		ListingID: string(s.ListingID),
		Entries:   MapDateRanges(s.Entries),
		Merged:    MapDateRanges(s.Merged(loc)),
		Version:   s.Version,
	}
	if !s.UpdatedAt.IsZero() {
		at := s.UpdatedAt.UTC()
		out.UpdatedAt = &at
	}
	return out
}
