package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	v1 "axiapac.com/timeclock/timeclock/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteRecords(t *testing.T) {
	rows := RecordRows(loadHistory(t), "https://api.example.com", time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RecordSheet}, f.GetSheetList())
	sheetRows, err := f.GetRows(RecordSheet)
	require.NoError(t, err)
	require.Len(t, sheetRows, 3)
	assert.Equal(t, []string{"Photo", "User", "Project", "Address", "Date", "Hours", "Warning"}, sheetRows[0])
	assert.Equal(t, "Ana", sheetRows[1][1])
	assert.Equal(t, "1/5/2024", sheetRows[1][4])
	assert.Equal(t, "2", sheetRows[1][5])
	assert.Equal(t, "-1", sheetRows[2][5])
	assert.True(t, strings.HasPrefix(sheetRows[2][6], "negative duration"))

	ok, link, err := f.GetCellHyperLink(RecordSheet, "A2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://api.example.com/uploads/clockins/a.jpg", link)

	ok, _, err = f.GetCellHyperLink(RecordSheet, "A3")
	require.NoError(t, err)
	assert.False(t, ok)

	width, err := f.GetColWidth(RecordSheet, "D")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)
}

func TestWriteRecordsWithoutWarnings(t *testing.T) {
	rows := RecordRows(loadHistory(t)[:1], "", time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetRows(RecordSheet)
	require.NoError(t, err)
	assert.Len(t, header[0], 6)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteRecords(&buf, nil), ErrNoData)
	assert.ErrorIs(t, WriteProjectHistory(&buf, nil), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestWriteProjectHistory(t *testing.T) {
	var entries []v1.ProjectHistoryDTO
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"p","user_id":null,"user_name":"TOTAL","project_id":"123456789","project_name":"Bridge","status":"in_progress",
		 "state":"QLD","city":"","street":"","street_number":"","postal_code":"4000","start_date":"2024-01-02T00:00:00","end_date":null,"hours":12.5}
	]`), &entries))

	rows := ProjectHistoryRows(entries)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Total)
	assert.Equal(t, "123456", rows[0].Code)
	assert.Equal(t, "02/01/2024", rows[0].StartDate)
	assert.Equal(t, Missing, rows[0].EndDate)
	assert.Len(t, SearchProjectHistory(rows, "bridge"), 1)

	var buf bytes.Buffer
	require.NoError(t, WriteProjectHistory(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheetRows, err := f.GetRows(HistorySheet)
	require.NoError(t, err)
	require.Len(t, sheetRows, 2)
	assert.Equal(t, "Total Hours", sheetRows[0][6])
	assert.Equal(t, []string{"123456", "Bridge", "in_progress", "QLD, 4000", "02/01/2024", Missing, "12.5", "TOTAL"}, sheetRows[1])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "MyRecord_20240501_093005.xlsx", FileName("MyRecord", time.Date(2024, 5, 1, 9, 30, 5, 0, time.UTC)))
}
