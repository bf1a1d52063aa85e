package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/domain/shared/daterange"
	"flatfinder/internal/domain/shared/events"
)

var now = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)

func eventNames(s *Schedule) []string {
	var names []string
	for _, ev := range events.Drain(s) {
		names = append(names, ev.EventName())
	}
	return names
}

func TestAddEntryAppendsVerbatim(t *testing.T) {
	s := NewSchedule("l-1")
	require.NoError(t, s.AddEntry(stay(10, 12), now))
	require.NoError(t, s.AddEntry(stay(1, 5), now))

	assert.Equal(t, []daterange.DateRange{stay(10, 12), stay(1, 5)}, s.Entries)
	assert.Equal(t, []string{"availability.updated", "availability.updated"}, eventNames(s))
}

func TestAddEntryRejectsOverlap(t *testing.T) {
	s := NewSchedule("l-1")
	require.NoError(t, s.AddEntry(stay(1, 5), now))

	err := s.AddEntry(stay(4, 8), now)
	assert.ErrorIs(t, err, ErrOverlappingRange)
	assert.Len(t, s.Entries, 1)
}

func TestAddEntryRejectsInvalid(t *testing.T) {
	s := NewSchedule("l-1")

	assert.ErrorIs(t, s.AddEntry(daterange.DateRange{From: stay(1, 2).From}, now), daterange.ErrIncomplete)
	assert.ErrorIs(t, s.AddEntry(daterange.DateRange{From: stay(5, 5).From, To: stay(1, 1).To}, now), daterange.ErrInvalidRange)
	assert.Empty(t, s.Entries)
}

func TestRemoveAt(t *testing.T) {
	s := NewSchedule("l-1")
	s.Entries = []daterange.DateRange{stay(1, 3), stay(5, 7), stay(9, 11)}

	removed, err := s.RemoveAt(1, now)
	require.NoError(t, err)
	assert.Equal(t, stay(5, 7), removed)
	assert.Equal(t, []daterange.DateRange{stay(1, 3), stay(9, 11)}, s.Entries)

	_, err = s.RemoveAt(2, now)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	_, err = s.RemoveAt(-1, now)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestReplaceIsAllOrNothing(t *testing.T) {
	s := NewSchedule("l-1")
	s.Entries = []daterange.DateRange{stay(1, 3)}

	err := s.Replace([]daterange.DateRange{stay(10, 14), stay(12, 16)}, now)
	assert.ErrorIs(t, err, ErrOverlappingRange)
	assert.Equal(t, []daterange.DateRange{stay(1, 3)}, s.Entries)

	require.NoError(t, s.Replace([]daterange.DateRange{stay(10, 14), stay(14, 16)}, now))
	assert.Equal(t, []daterange.DateRange{stay(10, 14), stay(14, 16)}, s.Entries, "same-day neighbours do not overlap")
}

func TestReserveConsumesAvailability(t *testing.T) {
	s := NewSchedule("l-1")
	s.Entries = []daterange.DateRange{stay(1, 10)}

	require.NoError(t, s.Reserve(stay(3, 5), time.UTC, now))

	assert.Equal(t, []daterange.DateRange{
		{From: stay(1, 10).From, To: stay(3, 5).From},
		{From: stay(3, 5).To, To: stay(1, 10).To},
	}, s.Entries)
	assert.Equal(t, []string{"availability.reserved"}, eventNames(s))
}

func TestReserveRejectsUncoveredRequest(t *testing.T) {
	s := NewSchedule("l-1")

	err := s.Reserve(stay(1, 2), time.UTC, now)
	assert.ErrorIs(t, err, ErrRangeUnavailable)
	assert.Empty(t, s.Entries)
	assert.Equal(t, []string{"availability.reservation_rejected"}, eventNames(s))
}

func TestReserveAcrossAdjacentEntries(t *testing.T) {
	s := NewSchedule("l-1")
	s.Entries = []daterange.DateRange{stay(1, 5), stay(5, 10)}

	require.NoError(t, s.Reserve(stay(1, 10), time.UTC, now))
	assert.Empty(t, s.Entries)
}

func TestCloneDropsEvents(t *testing.T) {
	s := NewSchedule("l-1")
	require.NoError(t, s.AddEntry(stay(1, 3), now))
	s.Version = 4

	c := s.Clone()
	assert.Equal(t, s.Entries, c.Entries)
	assert.Equal(t, int64(4), c.Version)
	assert.Empty(t, c.PendingEvents())

	c.Entries[0] = stay(7, 8)
	assert.Equal(t, stay(1, 3), s.Entries[0])
}
