package listings

import (
	"sort"
	"strings"
)

const (
	defaultSearchLimit = 24
	maxSearchLimit     = 100
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Landlord     LandlordID
	Statuses     []Status
	City         string
	MaxRentCents int64
	MinRooms     int
	Limit        int
	Offset       int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	if normalized.MaxRentCents < 0 {
		normalized.MaxRentCents = 0
	}
	if normalized.MinRooms < 0 {
		normalized.MinRooms = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// Matches applies the filters of a normalized SearchParams.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.Landlord != "" && l.Landlord != p.Landlord {
		return false
	}
	if len(p.Statuses) > 0 {
		found := false
		for _, s := range p.Statuses {
			if l.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.City != "" && strings.ToLower(l.City) != p.City {
		return false
	}
	if p.MaxRentCents > 0 && l.MonthlyRentCents > p.MaxRentCents {
		return false
	}
	if p.MinRooms > 0 && l.Rooms < p.MinRooms {
		return false
	}
	return true
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []*Listing
	Total int
}

// Page orders matches newest first and cuts the requested window.
func Page(matches []*Listing, p SearchParams) SearchResult {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if p.Limit <= 0 || end > total {
		end = total
	}
	return SearchResult{Items: matches[start:end], Total: total}
}
