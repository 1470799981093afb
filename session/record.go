package session

import (
	"fmt"
	"time"
)

const (
	CookieName = "clockinSession"
	Expiry     = 7 * 24 * time.Hour
)

// Key returns the per-user storage key of the session record.
func Key(userID string) string {
	return fmt.Sprintf("%s_%s", CookieName, userID)
}

// Record is the persisted state of an open clock-in.
// StartedAt and Accumulated are unix milliseconds.
type Record struct {
	ID          string `json:"id"`
	StartTime   string `json:"startTime"`
	StartedAt   int64  `json:"startedAt"`
	Accumulated int64  `json:"accumulated"`
}

func NewRecord(id, startTime string, now time.Time) Record {
	return Record{
		ID:          id,
		StartTime:   startTime,
		StartedAt:   now.UnixMilli(),
		Accumulated: 0,
	}
}

// Elapsed returns the banked time plus the current segment. A clock that went
// backwards contributes nothing.
func (r Record) Elapsed(now time.Time) int64 {
	delta := now.UnixMilli() - r.StartedAt
	if delta < 0 {
		delta = 0
	}
	return r.Accumulated + delta
}

// Rebase banks the current segment and opens a new one at now.
func (r Record) Rebase(now time.Time) Record {
	r.Accumulated = r.Elapsed(now)
	r.StartedAt = now.UnixMilli()
	return r
}

func (r Record) Valid() bool {
	return r.ID != "" && r.StartedAt > 0 && r.Accumulated >= 0
}
