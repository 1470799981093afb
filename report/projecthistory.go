package report

import (
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/utils"
)

const projectDateLayout = "02/01/2006"

type ProjectHistoryRow struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	ProjectName string `json:"projectName"`
	Status      string `json:"status"`
	Address     string `json:"address"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Hours       Hours  `json:"hours"`
	User        string `json:"user"`
	Total       bool   `json:"total"`
}

func ProjectHistoryRows(entries []v1.ProjectHistoryDTO) []ProjectHistoryRow {
	return utils.Map(entries, func(p v1.ProjectHistoryDTO) ProjectHistoryRow {
		row := ProjectHistoryRow{
			ID:          p.ID,
			Code:        shortCode(p.ProjectID),
			ProjectName: p.ProjectName,
			Status:      string(p.Status),
			Address:     p.Address.String(),
			StartDate:   Missing,
			EndDate:     Missing,
			Hours:       NewHours(p.Hours),
			User:        p.UserName,
			Total:       p.IsTotal(),
		}
		if !p.StartDate.IsZero() {
			row.StartDate = p.StartDate.UTC().Format(projectDateLayout)
		}
		if p.EndDate != nil && !p.EndDate.IsZero() {
			row.EndDate = p.EndDate.UTC().Format(projectDateLayout)
		}
		return row
	})
}

// SearchProjectHistory matches code, project name or address, ignoring case.
func SearchProjectHistory(rows []ProjectHistoryRow, term string) []ProjectHistoryRow {
	return search(rows, term, func(r ProjectHistoryRow) []string {
		return []string{r.Code, r.ProjectName, r.Address}
	})
}
