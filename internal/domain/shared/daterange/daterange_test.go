package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int, hour int) time.Time {
	return time.Date(2024, time.June, d, hour, 0, 0, 0, time.UTC)
}

func TestNewValidates(t *testing.T) {
	_, err := New(time.Time{}, day(2, 12))
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = New(day(5, 15), day(2, 12))
	assert.ErrorIs(t, err, ErrInvalidRange)

	dr, err := New(day(1, 15), day(1, 15))
	require.NoError(t, err)
	assert.True(t, dr.Complete())
}

func TestOverlapsIsClosed(t *testing.T) {
	a := DateRange{From: day(1, 15), To: day(5, 12)}

	assert.True(t, a.Overlaps(DateRange{From: day(5, 12), To: day(8, 12)}), "shared instant overlaps")
	assert.False(t, a.Overlaps(DateRange{From: day(5, 15), To: day(8, 12)}))
	assert.True(t, a.Overlaps(DateRange{From: day(2, 15), To: day(3, 12)}))
	assert.False(t, a.Overlaps(DateRange{From: day(6, 15), To: day(8, 12)}))
}

func TestContainsIncludesBoundaries(t *testing.T) {
	a := DateRange{From: day(1, 15), To: day(10, 12)}

	assert.True(t, a.Contains(a))
	assert.True(t, a.Contains(DateRange{From: day(3, 15), To: day(5, 12)}))
	assert.False(t, a.Contains(DateRange{From: day(9, 15), To: day(11, 12)}))
	assert.False(t, a.Contains(DateRange{From: day(1, 10), To: day(2, 12)}))
}

func TestSameDayUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	late := time.Date(2024, time.June, 1, 23, 30, 0, 0, time.UTC)
	next := time.Date(2024, time.June, 2, 8, 0, 0, 0, time.UTC)

	assert.False(t, SameDay(late, next, time.UTC))
	assert.True(t, SameDay(late, next, berlin))
	assert.False(t, SameDay(late, next, nil))
}

func TestAtHourAndNights(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	in := AtHour(time.Date(2024, time.June, 3, 22, 45, 0, 0, time.UTC), 15, berlin)
	assert.Equal(t, time.Date(2024, time.June, 4, 15, 0, 0, 0, berlin), in)

	dr := DateRange{From: day(3, 15), To: day(5, 12)}
	assert.Equal(t, 2, dr.Nights(time.UTC))
	assert.Equal(t, 0, DateRange{From: day(3, 15), To: day(3, 18)}.Nights(time.UTC))
}
