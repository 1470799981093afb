package session

import "fmt"

// FormatElapsed renders milliseconds as HH:MM:SS. Hours grow past 24.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
