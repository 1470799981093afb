package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00"},
		{999, "00:00:00"},
		{1000, "00:00:01"},
		{90_000, "00:01:30"},
		{3_661_000, "01:01:01"},
		{25 * 3600 * 1000, "25:00:00"},
		{100 * 3600 * 1000, "100:00:00"},
		{-5000, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.ms))
		})
	}
}
