package common

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateOnly is a calendar day sent as yyyy-MM-dd.
type DateOnly struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText lets query and form binding read the same format.
func (d *DateOnly) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, string(b))
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}
	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}

// StartIn returns the first instant of the day in loc, or zero.
func (d DateOnly) StartIn(loc *time.Location) time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// EndIn returns the last instant of the day in loc, or zero.
func (d DateOnly) EndIn(loc *time.Location) time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return d.StartIn(loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
