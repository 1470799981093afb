package report

import (
	"sort"
	"time"

	"axiapac.com/timeclock/utils"
)

// DailyTotal is the work of one user on one day.
type DailyTotal struct {
	Date    string    `json:"date"`
	User    string    `json:"user"`
	First   time.Time `json:"first"`
	Last    time.Time `json:"last"`
	Entries int       `json:"entries"`
	Hours   float64   `json:"hours"`
}

// DailyTotals groups record rows by date and user. Negative durations are
// left out of the sum as they are in Total.
func DailyTotals(rows []RecordRow) []DailyTotal {
	var totals []DailyTotal
	byDate := utils.GroupBy(rows, func(r RecordRow) string { return r.Date })

	for date, dayRows := range byDate {
		byUser := utils.GroupBy(dayRows, func(r RecordRow) string { return r.User })
		for user, recs := range byUser {
			sort.Slice(recs, func(i, j int) bool {
				return recs[i].CreatedAt.Before(recs[j].CreatedAt)
			})
			totals = append(totals, DailyTotal{
				Date:    date,
				User:    user,
				First:   recs[0].CreatedAt,
				Last:    recs[len(recs)-1].CreatedAt,
				Entries: len(recs),
				Hours:   Total(RecordHours(recs)),
			})
		}
	}

	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].First.Equal(totals[j].First) {
			return totals[i].First.Before(totals[j].First)
		}
		return totals[i].User < totals[j].User
	})
	return totals
}
