package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/session"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocations struct {
	mu    sync.Mutex
	posts []v1.LocationInput
	err   error
}

func (f *fakeLocations) Post(_ context.Context, input v1.LocationInput) (*v1.LocationDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, input)
	if f.err != nil {
		return nil, f.err
	}
	return &v1.LocationDTO{ID: "l"}, nil
}

type fakeSession struct {
	mu     sync.Mutex
	active bool
}

func (f *fakeSession) Refresh(context.Context) (session.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return session.Record{ID: "c-1"}, f.active
}

func (f *fakeSession) close() {
	f.mu.Lock()
	f.active = false
	f.mu.Unlock()
}

type movingPosition struct {
	mu     sync.Mutex
	points []geo.Point
}

func (m *movingPosition) Position(context.Context) (geo.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.points[0]
	if len(m.points) > 1 {
		m.points = m.points[1:]
	}
	return p, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recordingNotifier) Notify(_ context.Context, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func TestPingerGeofenceExit(t *testing.T) {
	locations := &fakeLocations{}
	notifier := &recordingNotifier{}
	p := &LocationPinger{
		Locations: locations,
		Source: &movingPosition{points: []geo.Point{
			{Lat: 10, Lng: 10},
			{Lat: 10.0003, Lng: 10},
			{Lat: 10.01, Lng: 10},
		}},
		Session:  &fakeSession{active: true},
		Watcher:  geo.NewWatcher(100, nil),
		Notifier: notifier,
		UserID:   "u-1",
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.False(t, p.ping(ctx))
	}

	require.Len(t, locations.posts, 3)
	assert.Equal(t, "c-1", locations.posts[0].ClockinID)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, AlertGeofenceExit, notifier.alerts[0].Kind)
	assert.Greater(t, notifier.alerts[0].Distance, 1000.0)
}

func TestPingerPostFailureStillChecksFence(t *testing.T) {
	notifier := &recordingNotifier{}
	w := geo.NewWatcher(100, nil)
	w.SetCenter(geo.Point{Lat: 0, Lng: 0})
	p := &LocationPinger{
		Locations: &fakeLocations{err: errors.New("offline")},
		Source:    StaticPosition{Lat: 1, Lng: 0},
		Session:   &fakeSession{active: true},
		Watcher:   w,
		Notifier:  notifier,
	}
	p.Run(canceledContext())
	assert.Len(t, notifier.alerts, 1)
}

func TestPingerStopsWhenSessionCloses(t *testing.T) {
	sess := &fakeSession{active: true}
	locations := &fakeLocations{}
	p := &LocationPinger{
		Locations: locations,
		Source:    StaticPosition{Lat: 1, Lng: 1},
		Session:   sess,
		Interval:  5 * time.Millisecond,
	}

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	sess.close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pinger did not stop")
	}
	locations.mu.Lock()
	assert.NotEmpty(t, locations.posts)
	locations.mu.Unlock()
}

func TestPingerStopsAfterClockOutElsewhere(t *testing.T) {
	clock := utils.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	store := session.NewMemoryStore(clock.Now)
	reporter := session.ReporterFunc(func(context.Context, string, int64) error { return nil })
	ctx := context.Background()

	watching := session.NewTracker("u-1", store, reporter, session.Options{Clock: clock})
	defer watching.Close()
	require.NoError(t, watching.Start(ctx, "c-1", "2024-05-01T08:00:00"))

	other := session.NewTracker("u-1", store, reporter, session.Options{Clock: clock})
	defer other.Close()
	resumed, err := other.Resume(ctx)
	require.NoError(t, err)
	require.True(t, resumed)
	_, err = other.End(ctx)
	require.NoError(t, err)

	locations := &fakeLocations{}
	p := &LocationPinger{
		Locations: locations,
		Source:    StaticPosition{Lat: 1, Lng: 1},
		Session:   watching,
		Interval:  time.Millisecond,
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	assert.NoError(t, p.Run(runCtx))
	assert.Empty(t, locations.posts)
	assert.Equal(t, session.StateIdle, watching.State())
}

func TestPollCancelled(t *testing.T) {
	err := Poll(canceledContext(), time.Millisecond, func(context.Context) (bool, error) {
		t.Fatal("should not be called")
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollStopsOnError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Poll(context.Background(), time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
