package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// calendarDate accepts "2006-01-02" or an RFC 3339 timestamp. Date-only
// values are read in the booking time zone; null or "" stay unset so the
// application layer reports the range as incomplete.
type calendarDate struct {
	raw string
}

func (d *calendarDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.raw = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	d.raw = strings.TrimSpace(s)
	return nil
}

func (d calendarDate) Time(loc *time.Location) (time.Time, error) {
	if d.raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(time.DateOnly, d.raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, d.raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", d.raw)
	}
	return t, nil
}

type rangeRequest struct {
	From calendarDate `json:"from"`
	To   calendarDate `json:"to"`
}

func (r rangeRequest) times(loc *time.Location) (time.Time, time.Time, error) {
	from, err := r.From.Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := r.To.Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
