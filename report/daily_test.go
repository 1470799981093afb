package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyTotals(t *testing.T) {
	at := func(day, hour int) time.Time { return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC) }
	rows := []RecordRow{
		{User: "Ben", Date: "1/5/2024", CreatedAt: at(1, 13), Hours: NewHours(2)},
		{User: "Ana", Date: "1/5/2024", CreatedAt: at(1, 14), Hours: NewHours(1.5)},
		{User: "Ana", Date: "1/5/2024", CreatedAt: at(1, 8), Hours: NewHours(4)},
		{User: "Ana", Date: "2/5/2024", CreatedAt: at(2, 9), Hours: NewHours(-1)},
	}

	got := DailyTotals(rows)
	require.Len(t, got, 3)

	assert.Equal(t, "Ana", got[0].User)
	assert.Equal(t, "1/5/2024", got[0].Date)
	assert.Equal(t, 2, got[0].Entries)
	assert.Equal(t, at(1, 8), got[0].First)
	assert.Equal(t, at(1, 14), got[0].Last)
	assert.Equal(t, 5.5, got[0].Hours)

	assert.Equal(t, "Ben", got[1].User)
	assert.Equal(t, 2.0, got[1].Hours)

	assert.Equal(t, "2/5/2024", got[2].Date)
	assert.Equal(t, 0.0, got[2].Hours)
}

func TestDailyTotalsEmpty(t *testing.T) {
	assert.Empty(t, DailyTotals(nil))
}
