package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	RecordSheet  = "MyRecord"
	HistorySheet = "History"
	photoLabel   = "📷 View photo"
	photoTooltip = "Open photo"
)

var ErrNoData = errors.New("no data to export")

var (
	recordHeaders  = []interface{}{"Photo", "User", "Project", "Address", "Date", "Hours"}
	recordWidths   = []float64{15, 20, 30, 40, 12, 8}
	historyHeaders = []interface{}{"Code", "Project Name", "Status", "Address", "Start Date", "End Date", "Total Hours", "User"}
	historyWidths  = []float64{10, 30, 14, 40, 12, 12, 12, 20}
)

// FileName builds the export name, e.g. MyRecord_20240501_093000.xlsx.
func FileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("20060102_150405"))
}

func newSheet(name string, headers []interface{}, widths []float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		f.Close()
		return nil, err
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, w); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteRecords writes the history table as a workbook with one MyRecord sheet.
// Photos become hyperlinks. Rows with a negative duration get a Warning column.
func WriteRecords(w io.Writer, rows []RecordRow) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	headers := recordHeaders
	warnings := hasWarnings(RecordHours(rows))
	if warnings {
		headers = append(append([]interface{}{}, recordHeaders...), "Warning")
	}

	f, err := newSheet(RecordSheet, headers, recordWidths)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer f.Close()

	tooltip := photoTooltip
	for i, r := range rows {
		rowNum := i + 2
		values := []interface{}{"", r.User, r.Project, r.Address, r.Date, r.Hours.Value}
		if warnings {
			values = append(values, r.Hours.Warning)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(RecordSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if r.PhotoURL == "" {
			continue
		}
		if err := f.SetCellStr(RecordSheet, cell, photoLabel); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		if err := f.SetCellHyperLink(RecordSheet, cell, r.PhotoURL, "External", excelize.HyperlinkOpts{Tooltip: &tooltip}); err != nil {
			return fmt.Errorf("link photo on row %d: %w", rowNum, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteProjectHistory writes the project history table to a History sheet.
func WriteProjectHistory(w io.Writer, rows []ProjectHistoryRow) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	hours := make([]Hours, len(rows))
	for i, r := range rows {
		hours[i] = r.Hours
	}
	headers := historyHeaders
	warnings := hasWarnings(hours)
	if warnings {
		headers = append(append([]interface{}{}, historyHeaders...), "Warning")
	}

	f, err := newSheet(HistorySheet, headers, historyWidths)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer f.Close()

	for i, r := range rows {
		rowNum := i + 2
		values := []interface{}{r.Code, r.ProjectName, r.Status, r.Address, r.StartDate, r.EndDate, r.Hours.Value, r.User}
		if warnings {
			values = append(values, r.Hours.Warning)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(HistorySheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func hasWarnings(hours []Hours) bool {
	for _, h := range hours {
		if h.Warning != "" {
			return true
		}
	}
	return false
}
