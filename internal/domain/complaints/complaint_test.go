package complaints

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

func TestFileComplaint(t *testing.T) {
	c, err := File(FileParams{ID: "c-1", ListingID: "l-1", ReporterID: "u-1", Subject: " Fake photos ", Body: "see", Now: now})
	require.NoError(t, err)

	assert.Equal(t, StatusOpen, c.Status)
	assert.Equal(t, "Fake photos", c.Subject)
	require.Len(t, c.PendingEvents(), 1)
	assert.Equal(t, "complaint.filed", c.PendingEvents()[0].EventName())

	_, err = File(FileParams{ID: "c-2", ListingID: "l-1", ReporterID: "u-1", Now: now})
	assert.ErrorIs(t, err, ErrSubjectRequired)
	_, err = File(FileParams{ID: "c-2", ListingID: "l-1", Subject: "x", Now: now})
	assert.ErrorIs(t, err, ErrReporterRequired)
}

func TestComplaintWorkflow(t *testing.T) {
	c, err := File(FileParams{ID: "c-1", ListingID: "l-1", ReporterID: "u-1", Subject: "s", Now: now})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Transition(StatusResolved, "", now), ErrInvalidTransition)
	require.NoError(t, c.Transition(StatusInReview, "", now))
	require.NoError(t, c.Transition(StatusResolved, " removed listing ", now.Add(time.Hour)))

	assert.Equal(t, StatusResolved, c.Status)
	assert.Equal(t, "removed listing", c.AdminNote)
	assert.Equal(t, now.Add(time.Hour), c.UpdatedAt)
	assert.ErrorIs(t, c.Transition(StatusOpen, "", now), ErrInvalidTransition)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("in_review")
	require.NoError(t, err)
	assert.Equal(t, StatusInReview, s)

	_, err = ParseStatus("closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
