package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"axiapac.com/timeclock/session"
	"axiapac.com/timeclock/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	s := NewCookieStore(t.TempDir(), clock)
	key := session.Key("12")

	_, err := s.Load(ctx, key)
	assert.ErrorIs(t, err, session.ErrNoSession)

	rec := session.NewRecord("88", "2024-05-01T09:00:00", clock.Now())
	require.NoError(t, s.Save(ctx, key, rec, clock.Now().Add(session.Expiry)))

	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Load(ctx, key)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.NoError(t, s.Delete(ctx, key))
}

func TestCookieStoreFileIsSetCookieLine(t *testing.T) {
	dir := t.TempDir()
	clock := utils.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	s := NewCookieStore(dir, clock)
	key := session.Key("3")

	rec := session.Record{ID: "1", StartTime: "x", StartedAt: 10, Accumulated: 5}
	require.NoError(t, s.Save(context.Background(), key, rec, clock.Now().Add(time.Hour)))

	raw, err := os.ReadFile(filepath.Join(dir, key+".cookie"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "clockinSession_3=")
	assert.Contains(t, string(raw), "Expires=Wed, 01 May 2024 10:00:00 GMT")
	assert.Contains(t, string(raw), "%22accumulated%22%3A5")
}

func TestCookieStoreExpired(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clock := utils.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	s := NewCookieStore(dir, clock)
	key := session.Key("5")

	rec := session.NewRecord("1", "t", clock.Now())
	require.NoError(t, s.Save(ctx, key, rec, clock.Now().Add(session.Expiry)))

	clock.Advance(session.Expiry)
	_, err := s.Load(ctx, key)
	assert.ErrorIs(t, err, session.ErrNoSession)

	_, err = os.Stat(filepath.Join(dir, key+".cookie"))
	assert.True(t, os.IsNotExist(err))
}

func TestCookieStoreMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not a cookie", "garbage"},
		{"bad json", "clockinSession_9=%7Bnot-json"},
		{"missing id", "clockinSession_9=" + "%7B%22startedAt%22%3A1%7D"},
		{"other cookie", "somethingElse=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			key := session.Key("9")
			require.NoError(t, os.WriteFile(filepath.Join(dir, key+".cookie"), []byte(tt.content), 0o600))

			s := NewCookieStore(dir, utils.NewFakeClock(time.Now()))
			_, err := s.Load(context.Background(), key)
			assert.ErrorIs(t, err, session.ErrMalformedRecord)
		})
	}
}

func TestCookieStoreWithTracker(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	s := NewCookieStore(t.TempDir(), clock)
	noop := session.ReporterFunc(func(context.Context, string, int64) error { return nil })

	tr := session.NewTracker("4", s, noop, session.Options{Clock: clock, TickInterval: time.Hour})
	require.NoError(t, tr.Start(ctx, "c", "2024-05-01T09:00:00Z"))
	tr.Close()

	clock.Advance(45 * time.Second)
	again := session.NewTracker("4", s, noop, session.Options{Clock: clock, TickInterval: time.Hour})
	defer again.Close()
	ok, err := again.Resume(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "00:00:45", again.Display())
}
