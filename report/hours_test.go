package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHours(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   string
		end     string
		want    float64
		warning bool
	}{
		{"closed", "2024-05-01T08:00:00Z", "2024-05-01T10:30:00Z", 2.5, false},
		{"no zone is utc", "2024-05-01T08:00:00", "2024-05-01T09:00:00+00:00", 1, false},
		{"open counts to now", "2024-05-01T11:15:00", "", 0.75, false},
		{"rounded", "2024-05-01T08:00:00Z", "2024-05-01T08:20:00Z", 0.33, false},
		{"negative kept", "2024-05-01T10:00:00Z", "2024-05-01T08:00:00Z", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := CalculateHours(tt.start, tt.end, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Value)
			assert.Equal(t, tt.warning, h.Warning != "")
			assert.Equal(t, tt.warning, h.Negative())
		})
	}
}

func TestCalculateHoursErrors(t *testing.T) {
	_, err := CalculateHours("", "", time.Now())
	assert.ErrorIs(t, err, ErrNoStart)

	_, err = CalculateHours("garbage", "", time.Now())
	assert.Error(t, err)

	_, err = CalculateHours("2024-05-01T08:00:00Z", "garbage", time.Now())
	assert.Error(t, err)
}

func TestTotalSkipsNegative(t *testing.T) {
	assert.Equal(t, 3.5, Total([]Hours{NewHours(1.25), NewHours(-4), NewHours(2.25)}))
}
