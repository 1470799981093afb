package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"RFC3339 with Z", "2025-10-13T09:30:00Z", time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC)},
		{"offset", "2025-10-13T19:30:00+10:00", time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC)},
		{"fractional", "2025-10-13T09:30:00.123Z", time.Date(2025, 10, 13, 9, 30, 0, 123000000, time.UTC)},
		{"no zone is UTC", "2025-10-13T09:30:00", time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC)},
		{"no zone with micros", "2025-10-13T09:30:00.250000", time.Date(2025, 10, 13, 9, 30, 0, 250000000, time.UTC)},
		{"date only", "2025-10-13", time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISOTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(*got), "got %s", got)
		})
	}
}

func TestParseISOTimeRejectsGarbage(t *testing.T) {
	_, err := ParseISOTime("")
	assert.Error(t, err)

	_, err = ParseISOTime("yesterday")
	assert.Error(t, err)
}
