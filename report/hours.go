package report

import (
	"errors"
	"fmt"
	"math"
	"time"

	"axiapac.com/timeclock/utils"
)

var ErrNoStart = errors.New("missing start time")

// Hours is a computed duration in hours. A negative value is kept as is and
// carries a Warning.
type Hours struct {
	Value   float64 `json:"value"`
	Warning string  `json:"warning,omitempty"`
}

func (h Hours) Negative() bool {
	return h.Value < 0
}

// CalculateHours returns the hours between start and end, or between start and
// now while end is empty. Timestamps without a zone are UTC.
func CalculateHours(start, end string, now time.Time) (Hours, error) {
	if start == "" {
		return Hours{}, ErrNoStart
	}
	s, err := utils.ParseISOTime(start)
	if err != nil {
		return Hours{}, err
	}
	e := now
	if end != "" {
		parsed, err := utils.ParseISOTime(end)
		if err != nil {
			return Hours{}, err
		}
		e = *parsed
	}
	return NewHours(e.Sub(*s).Hours()), nil
}

// NewHours rounds to two decimals and flags negative durations.
func NewHours(value float64) Hours {
	h := Hours{Value: Round2(value)}
	if h.Value < 0 {
		h.Warning = fmt.Sprintf("negative duration of %.2f hours, check the clock-in times", h.Value)
	}
	return h
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Total sums the hours of rows, skipping negative values.
func Total(hours []Hours) float64 {
	total := 0.0
	for _, h := range hours {
		if h.Value > 0 {
			total += h.Value
		}
	}
	return Round2(total)
}
