package store

import (
	"encoding/json"
	"fmt"

	"axiapac.com/timeclock/session"
)

func encode(rec session.Record) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal session record: %w", err)
	}
	return string(b), nil
}

func decode(payload string) (session.Record, error) {
	var rec session.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return session.Record{}, fmt.Errorf("%w: %v", session.ErrMalformedRecord, err)
	}
	if !rec.Valid() {
		return session.Record{}, session.ErrMalformedRecord
	}
	return rec, nil
}
