package report

import (
	"fmt"
	"io"
	"strings"

	v1 "axiapac.com/timeclock/timeclock/v1"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type MonthHours struct {
	Month string  `json:"month"`
	Hours float64 `json:"hours"`
}

// MonthlyChart spreads the server's per-month totals over a full year.
// Months outside 1..12 are ignored.
func MonthlyChart(data []v1.MonthlyHoursDTO) []MonthHours {
	chart := make([]MonthHours, 12)
	for i, name := range monthNames {
		chart[i] = MonthHours{Month: name}
	}
	for _, d := range data {
		if d.Month >= 1 && d.Month <= 12 {
			chart[d.Month-1].Hours = Round2(d.Hours)
		}
	}
	return chart
}

// RenderChart prints one bar per month scaled to width characters.
func RenderChart(w io.Writer, chart []MonthHours, width int) error {
	peak := 0.0
	for _, m := range chart {
		if m.Hours > peak {
			peak = m.Hours
		}
	}
	for _, m := range chart {
		n := 0
		if peak > 0 && m.Hours > 0 {
			n = int(m.Hours / peak * float64(width))
		}
		if _, err := fmt.Fprintf(w, "%s %-*s %6.2f\n", m.Month, width, strings.Repeat("#", n), m.Hours); err != nil {
			return err
		}
	}
	return nil
}
