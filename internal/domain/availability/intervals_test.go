package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flatfinder/internal/domain/shared/daterange"
)

func stay(fromDay, toDay int) daterange.DateRange {
	return daterange.DateRange{
		From: time.Date(2024, time.June, fromDay, 15, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.June, toDay, 12, 0, 0, 0, time.UTC),
	}
}

func TestMergeAdjacentFoldsTouchingDays(t *testing.T) {
	got := MergeAdjacent([]daterange.DateRange{stay(1, 5), stay(5, 10)}, time.UTC)

	assert.Equal(t, []daterange.DateRange{{From: stay(1, 5).From, To: stay(5, 10).To}}, got)
}

func TestMergeAdjacentSortsAndKeepsGaps(t *testing.T) {
	got := MergeAdjacent([]daterange.DateRange{stay(20, 25), stay(1, 5), stay(7, 9)}, time.UTC)

	assert.Equal(t, []daterange.DateRange{stay(1, 5), stay(7, 9), stay(20, 25)}, got)
}

func TestMergeAdjacentFoldsOverlapsAndDropsIncomplete(t *testing.T) {
	got := MergeAdjacent([]daterange.DateRange{
		stay(1, 10),
		{From: stay(3, 4).From},
		stay(4, 6),
		stay(8, 14),
	}, time.UTC)

	assert.Equal(t, []daterange.DateRange{{From: stay(1, 10).From, To: stay(8, 14).To}}, got)
}

func TestMergeAdjacentEmpty(t *testing.T) {
	assert.Empty(t, MergeAdjacent(nil, time.UTC))
	assert.NotNil(t, MergeAdjacent(nil, time.UTC))
}

func TestMergeAdjacentIsIdempotent(t *testing.T) {
	in := []daterange.DateRange{stay(12, 14), stay(1, 3), stay(3, 6), stay(14, 20), stay(22, 23)}
	once := MergeAdjacent(in, time.UTC)

	assert.Equal(t, once, MergeAdjacent(once, time.UTC))
	for i := 1; i < len(once); i++ {
		assert.True(t, once[i-1].To.Before(once[i].From))
		assert.False(t, daterange.SameDay(once[i-1].To, once[i].From, time.UTC))
	}
}

func TestMergeAdjacentDayComparisonFollowsLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	a := daterange.DateRange{
		From: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.June, 3, 16, 0, 0, 0, time.UTC),
	}
	b := daterange.DateRange{
		From: time.Date(2024, time.June, 4, 10, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.June, 6, 0, 0, 0, 0, time.UTC),
	}

	assert.Len(t, MergeAdjacent([]daterange.DateRange{a, b}, time.UTC), 2)
	assert.Len(t, MergeAdjacent([]daterange.DateRange{a, b}, tokyo), 1)
}

func TestSubtractSplitsRange(t *testing.T) {
	availability := []daterange.DateRange{
		{From: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)},
	}
	booking := stay(3, 5)

	got := Subtract(availability, booking, time.UTC)

	assert.Equal(t, []daterange.DateRange{
		{From: availability[0].From, To: booking.From},
		{From: booking.To, To: availability[0].To},
	}, got)
}

func TestSubtractConsumesSameDayEdges(t *testing.T) {
	availability := []daterange.DateRange{stay(1, 10)}

	assert.Equal(t, []daterange.DateRange{{From: stay(1, 4).To, To: stay(1, 10).To}},
		Subtract(availability, stay(1, 4), time.UTC))
	assert.Equal(t, []daterange.DateRange{{From: stay(1, 10).From, To: stay(7, 10).From}},
		Subtract(availability, stay(7, 10), time.UTC))
	assert.Empty(t, Subtract(availability, stay(1, 10), time.UTC))
}

func TestSubtractLeavesDisjointRanges(t *testing.T) {
	availability := []daterange.DateRange{stay(1, 3), stay(20, 25)}

	assert.Equal(t, availability, Subtract(availability, stay(10, 12), time.UTC))
}

func TestSubtractMergesFirst(t *testing.T) {
	availability := []daterange.DateRange{stay(1, 5), stay(5, 10)}

	got := Subtract(availability, stay(4, 6), time.UTC)

	assert.Equal(t, []daterange.DateRange{
		{From: stay(1, 5).From, To: stay(4, 6).From},
		{From: stay(4, 6).To, To: stay(5, 10).To},
	}, got)
}

func TestSubtractRemaindersStayOutsideBooking(t *testing.T) {
	availability := []daterange.DateRange{stay(1, 8), stay(10, 18), stay(18, 28)}
	for _, b := range []daterange.DateRange{stay(2, 4), stay(11, 20), stay(1, 28), stay(7, 11)} {
		out := Subtract(availability, b, time.UTC)
		for _, r := range out {
			assert.False(t, r.From.Before(b.To) && r.To.After(b.From), "remainder %v intersects booking %v", r, b)
			assert.True(t, WithinMerged(availability, r, time.UTC))
		}
	}
}

func TestCoveredAcceptsSpanAcrossAdjacentEntries(t *testing.T) {
	raw := []daterange.DateRange{stay(1, 5), stay(5, 10)}

	assert.True(t, Covered(raw, stay(3, 8), time.UTC))
	assert.True(t, Covered(raw, stay(2, 4), time.UTC))
	assert.False(t, Covered(raw, stay(8, 12), time.UTC))
	assert.False(t, Covered(nil, stay(1, 2), time.UTC))
	assert.False(t, Covered(raw, daterange.DateRange{From: stay(2, 3).From}, time.UTC))
}

func TestFirstOverlap(t *testing.T) {
	entries := []daterange.DateRange{stay(1, 5), stay(10, 12)}

	assert.Equal(t, -1, FirstOverlap(entries, stay(6, 9)))
	assert.Equal(t, 1, FirstOverlap(entries, stay(11, 14)))
	assert.Equal(t, 0, FirstOverlap(entries, daterange.DateRange{From: stay(5, 5).To, To: stay(7, 7).To}))
}

func TestSubtractThenReAddRestoresSpan(t *testing.T) {
	plusTwo := time.FixedZone("+02:00", 2*3600)
	cases := []struct {
		name    string
		set     []daterange.DateRange
		booking daterange.DateRange
		loc     *time.Location
	}{
		{"whole range", []daterange.DateRange{stay(1, 10)}, stay(1, 10), time.UTC},
		{"leading edge", []daterange.DateRange{stay(1, 10)}, stay(1, 3), time.UTC},
		{"trailing edge", []daterange.DateRange{stay(1, 10)}, stay(7, 10), time.UTC},
		{"middle", []daterange.DateRange{stay(1, 10)}, stay(4, 6), time.UTC},
		{"one day in", []daterange.DateRange{stay(1, 10)}, stay(2, 4), time.UTC},
		{"across adjacent entries", []daterange.DateRange{stay(1, 5), stay(5, 10)}, stay(3, 7), time.UTC},
		{"second of two ranges", []daterange.DateRange{stay(1, 5), stay(8, 14)}, stay(9, 12), time.UTC},
		{"unsorted input", []daterange.DateRange{stay(20, 25), stay(1, 5)}, stay(21, 23), time.UTC},
		{"offset zone", []daterange.DateRange{stay(1, 10)}, stay(3, 5), plusTwo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rest := Subtract(tc.set, tc.booking, tc.loc)
			restored := MergeAdjacent(append(rest, tc.booking), tc.loc)

			assert.Equal(t, MergeAdjacent(tc.set, tc.loc), restored)
		})
	}
}
