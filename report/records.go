package report

import (
	"strings"
	"time"

	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/utils"
)

const Missing = "—"

// RecordRow is one line of the clock-in history table.
type RecordRow struct {
	ID        string    `json:"id"`
	ClockinID string    `json:"clockinId"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	User      string    `json:"user"`
	Project   string    `json:"project"`
	Address   string    `json:"address"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	Hours     Hours     `json:"hours"`
}

// RecordRows maps history entries to table rows. Photo paths are resolved
// against baseURL and dates are shown in loc.
func RecordRows(history []v1.HistoryDTO, baseURL string, loc *time.Location) []RecordRow {
	if loc == nil {
		loc = time.UTC
	}
	return utils.Map(history, func(h v1.HistoryDTO) RecordRow {
		row := RecordRow{
			ID:        h.ID,
			ClockinID: h.ClockinID,
			User:      h.UserName,
			Project:   h.ProjectName,
			Address:   h.Address.String(),
			CreatedAt: h.CreatedAt.Time,
			Hours:     NewHours(h.Hours),
		}
		if !h.CreatedAt.IsZero() {
			row.Date = h.CreatedAt.In(loc).Format(utils.DisplayDateLayout)
		}
		if photo := utils.Deref(h.PhotoPath); photo != "" {
			row.PhotoURL = strings.TrimRight(baseURL, "/") + photo
		}
		return row
	})
}

// SearchRecords keeps rows whose user, project or address contain term, ignoring case.
func SearchRecords(rows []RecordRow, term string) []RecordRow {
	return search(rows, term, func(r RecordRow) []string {
		return []string{r.User, r.Project, r.Address}
	})
}

// RecordsBetween keeps rows created within [from, to]. Zero bounds are open.
func RecordsBetween(rows []RecordRow, from, to time.Time) []RecordRow {
	return utils.Filter(rows, func(r RecordRow) bool {
		if !from.IsZero() && r.CreatedAt.Before(from) {
			return false
		}
		if !to.IsZero() && r.CreatedAt.After(to) {
			return false
		}
		return true
	})
}

func RecordHours(rows []RecordRow) []Hours {
	return utils.Map(rows, func(r RecordRow) Hours { return r.Hours })
}

// ClockinRow is one line of the personal time card.
type ClockinRow struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	User       string    `json:"user"`
	Project    string    `json:"project"`
	PostalCode string    `json:"postalCode"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end,omitempty"`
	Hours      *Hours    `json:"hours,omitempty"`
}

// ClockinRows maps clock-ins to time card rows. Open clock-ins count up to now.
func ClockinRows(clockins []v1.ClockinDTO, now time.Time) []ClockinRow {
	return utils.Map(clockins, func(c v1.ClockinDTO) ClockinRow {
		row := ClockinRow{
			ID:         c.ID,
			Code:       shortCode(c.ID),
			User:       c.UserName,
			Project:    orMissing(utils.Deref(c.ProjectName)),
			PostalCode: orMissing(utils.Deref(c.PostalCode)),
			Start:      c.StartTime.UTC(),
		}
		end := ""
		if c.EndTime != nil && !c.EndTime.IsZero() {
			row.End = c.EndTime.UTC()
			end = c.EndTime.Raw
		}
		if h, err := CalculateHours(c.StartTime.Raw, end, now); err == nil {
			row.Hours = &h
		}
		return row
	})
}

func SearchClockins(rows []ClockinRow, term string) []ClockinRow {
	return search(rows, term, func(r ClockinRow) []string {
		return []string{r.Code, r.User, r.Project, r.PostalCode}
	})
}

func search[T any](rows []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	return utils.Filter(rows, func(r T) bool {
		return strings.Contains(strings.ToLower(strings.Join(fields(r), " ")), term)
	})
}

func shortCode(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
