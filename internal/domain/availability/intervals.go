package availability

import (
	"sort"
	"time"

	"flatfinder/internal/domain/shared/daterange"
)

// MergeAdjacent normalizes an availability set. Incomplete ranges are dropped,
// the rest sorted by From and folded so that a range whose From falls on the
// same calendar day (in loc) as the accumulated To extends it. Overlapping
// input folds in as well, so the output is sorted, non-overlapping and
// pairwise non-adjacent by day.
func MergeAdjacent(ranges []daterange.DateRange, loc *time.Location) []daterange.DateRange {
	sorted := make([]daterange.DateRange, 0, len(ranges))
	for _, r := range ranges {
		if !r.Complete() {
			continue
		}
		sorted = append(sorted, r)
	}
	if len(sorted) == 0 {
		return []daterange.DateRange{}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.Before(sorted[j].From)
	})

	merged := []daterange.DateRange{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if daterange.SameDay(last.To, next.From, loc) || !next.From.After(last.To) {
			if next.To.After(last.To) {
				last.To = next.To
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// WithinMerged reports whether request lies entirely inside one range of the
// merged set. It catches requests spanning several originally adjacent entries.
func WithinMerged(ranges []daterange.DateRange, request daterange.DateRange, loc *time.Location) bool {
	if !request.Complete() {
		return false
	}
	for _, r := range MergeAdjacent(ranges, loc) {
		if r.Contains(request) {
			return true
		}
	}
	return false
}

// Covered is the acceptance check of the booking protocol: a single raw entry
// contains the request, or the merged set does.
func Covered(raw []daterange.DateRange, request daterange.DateRange, loc *time.Location) bool {
	if !request.Complete() {
		return false
	}
	for _, r := range raw {
		if r.Complete() && r.Contains(request) {
			return true
		}
	}
	return WithinMerged(raw, request, loc)
}

// Subtract removes booking from the merged availability. A remainder that
// would start or end on the same calendar day as the booking boundary is not
// emitted, so a booking touching a range edge consumes that side entirely.
func Subtract(original []daterange.DateRange, booking daterange.DateRange, loc *time.Location) []daterange.DateRange {
	merged := MergeAdjacent(original, loc)
	if !booking.Complete() {
		return merged
	}
	bFrom, bTo := booking.From, booking.To

	out := make([]daterange.DateRange, 0, len(merged)+1)
	for _, r := range merged {
		aFrom, aTo := r.From, r.To
		if !bTo.After(aFrom) || !bFrom.Before(aTo) {
			out = append(out, r)
			continue
		}
		if bFrom.After(aFrom) && !daterange.SameDay(aFrom, bFrom, loc) {
			out = append(out, daterange.DateRange{From: aFrom, To: bFrom})
		}
		if bTo.Before(aTo) && !daterange.SameDay(bTo, aTo, loc) {
			out = append(out, daterange.DateRange{From: bTo, To: aTo})
		}
	}
	return out
}

// FirstOverlap returns the index of the first entry pairwise overlapping
// candidate (newFrom <= e.To && newTo >= e.From), or -1.
func FirstOverlap(entries []daterange.DateRange, candidate daterange.DateRange) int {
	for i, e := range entries {
		if !e.Complete() {
			continue
		}
		if e.Overlaps(candidate) {
			return i
		}
	}
	return -1
}
