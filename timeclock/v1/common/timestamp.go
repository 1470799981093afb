package common

import (
	"encoding/json"
	"time"

	"axiapac.com/timeclock/utils"
)

// Timestamp is an API datetime. Values sent without a zone are read as UTC.
// Raw keeps the string exactly as the server sent it.
type Timestamp struct {
	time.Time
	Raw string
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Raw: t.Format(time.RFC3339Nano)}
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	t, err := utils.ParseISOTime(s)
	if err != nil {
		return err
	}
	ts.Time = *t
	ts.Raw = s
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time.IsZero() {
		return []byte("null"), nil
	}
	if ts.Raw != "" {
		return json.Marshal(ts.Raw)
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero()
}
