package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"axiapac.com/timeclock/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportCall struct {
	id      string
	elapsed int64
}

type fakeReporter struct {
	mu    sync.Mutex
	err   error
	calls []reportCall
}

func (r *fakeReporter) EndSession(_ context.Context, id string, elapsedMs int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, reportCall{id, elapsedMs})
	return r.err
}

// brokenStore returns a malformed record once and records deletes.
type brokenStore struct {
	*MemoryStore
	deleted []string
}

func (s *brokenStore) Load(ctx context.Context, key string) (Record, error) {
	return Record{}, ErrMalformedRecord
}

func (s *brokenStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func newTestTracker(clock *utils.FakeClock, store Store, reporter Reporter) *Tracker {
	return NewTracker("7", store, reporter, Options{Clock: clock, TickInterval: time.Hour})
}

func TestTrackerReloadScenario(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clock.Now)
	reporter := &fakeReporter{}

	first := newTestTracker(clock, store, reporter)
	require.NoError(t, first.Start(ctx, "c-1", "2024-03-01T08:00:00Z"))
	assert.Equal(t, StateActive, first.State())

	clock.Advance(90 * time.Second)
	assert.Equal(t, "00:01:30", first.Display())
	first.Close()

	// a fresh process picks up the persisted record
	second := newTestTracker(clock, store, reporter)
	defer second.Close()
	resumed, err := second.Resume(ctx)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, "00:01:30", second.Display())

	rec, ok := second.Active()
	require.True(t, ok)
	assert.Equal(t, int64(90_000), rec.Accumulated)
	assert.Equal(t, clock.Now().UnixMilli(), rec.StartedAt)

	clock.Advance(30 * time.Second)
	elapsed, err := second.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120_000), elapsed)
	require.Len(t, reporter.calls, 1)
	assert.Equal(t, reportCall{"c-1", 120_000}, reporter.calls[0])

	assert.Equal(t, StateIdle, second.State())
	assert.Equal(t, "00:00:00", second.Display())
	_, err = store.Load(ctx, Key("7"))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTrackerStartWhileActive(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Now())
	tr := newTestTracker(clock, NewMemoryStore(clock.Now), &fakeReporter{})
	defer tr.Close()

	require.NoError(t, tr.Start(ctx, "a", "2024-01-01T00:00:00Z"))
	err := tr.Start(ctx, "b", "2024-01-01T00:00:00Z")
	assert.ErrorIs(t, err, ErrActiveSession)

	rec, _ := tr.Active()
	assert.Equal(t, "a", rec.ID)
}

func TestTrackerEndFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Now())
	store := NewMemoryStore(clock.Now)
	reporter := &fakeReporter{err: errors.New("connection refused")}
	tr := newTestTracker(clock, store, reporter)
	defer tr.Close()

	require.NoError(t, tr.Start(ctx, "c-9", "2024-01-01T00:00:00Z"))
	clock.Advance(10 * time.Second)

	_, err := tr.End(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, StateActive, tr.State())
	assert.Equal(t, "00:00:10", tr.Display())

	stored, err := store.Load(ctx, tr.Key())
	require.NoError(t, err)
	assert.Equal(t, "c-9", stored.ID)

	// retry succeeds
	reporter.err = nil
	clock.Advance(5 * time.Second)
	elapsed, err := tr.End(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), elapsed)
}

func TestTrackerEndWithoutSession(t *testing.T) {
	clock := utils.NewFakeClock(time.Now())
	tr := newTestTracker(clock, NewMemoryStore(clock.Now), &fakeReporter{})
	_, err := tr.End(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTrackerResumeMalformedRecord(t *testing.T) {
	clock := utils.NewFakeClock(time.Now())
	store := &brokenStore{MemoryStore: NewMemoryStore(clock.Now)}
	tr := newTestTracker(clock, store, &fakeReporter{})

	resumed, err := tr.Resume(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, StateIdle, tr.State())
	assert.Equal(t, []string{Key("7")}, store.deleted)
}

func TestTrackerResumeExpired(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Now())
	store := NewMemoryStore(clock.Now)
	tr := newTestTracker(clock, store, &fakeReporter{})
	require.NoError(t, tr.Start(ctx, "old", "2024-01-01T00:00:00Z"))
	tr.Close()

	clock.Advance(Expiry + time.Minute)
	next := newTestTracker(clock, store, &fakeReporter{})
	resumed, err := next.Resume(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
}

func TestTrackerTicks(t *testing.T) {
	clock := utils.NewFakeClock(time.Now())
	ticks := make(chan string, 16)
	tr := NewTracker("7", NewMemoryStore(clock.Now), &fakeReporter{}, Options{
		Clock:        clock,
		TickInterval: 5 * time.Millisecond,
		OnTick: func(display string) {
			select {
			case ticks <- display:
			default:
			}
		},
	})
	defer tr.Close()

	require.NoError(t, tr.Start(context.Background(), "c", "2024-01-01T00:00:00Z"))
	clock.Advance(time.Hour + 2*time.Second)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ticks:
			if got == "01:00:02" {
				return
			}
		case <-deadline:
			t.Fatal("elapsed time never published")
		}
	}
}

type failingLoadStore struct {
	*MemoryStore
	err error
}

func (s *failingLoadStore) Load(ctx context.Context, key string) (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	return s.MemoryStore.Load(ctx, key)
}

func TestTrackerRefresh(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	store := &failingLoadStore{MemoryStore: NewMemoryStore(clock.Now)}

	tr := newTestTracker(clock, store, &fakeReporter{})
	defer tr.Close()

	_, ok := tr.Refresh(ctx)
	assert.False(t, ok)

	require.NoError(t, tr.Start(ctx, "c-1", "2024-03-01T08:00:00Z"))
	rec, ok := tr.Refresh(ctx)
	require.True(t, ok)
	assert.Equal(t, "c-1", rec.ID)

	store.err = errors.New("disk unavailable")
	_, ok = tr.Refresh(ctx)
	assert.True(t, ok)
	assert.Equal(t, StateActive, tr.State())

	store.err = nil
	require.NoError(t, store.Delete(ctx, tr.Key()))
	_, ok = tr.Refresh(ctx)
	assert.False(t, ok)
	assert.Equal(t, StateIdle, tr.State())
}

func TestTrackerRefreshReplacedSession(t *testing.T) {
	ctx := context.Background()
	clock := utils.NewFakeClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clock.Now)

	tr := newTestTracker(clock, store, &fakeReporter{})
	defer tr.Close()
	require.NoError(t, tr.Start(ctx, "c-1", "2024-03-01T08:00:00Z"))

	require.NoError(t, store.Save(ctx, tr.Key(), NewRecord("c-2", "2024-03-01T09:00:00Z", clock.Now()), clock.Now().Add(Expiry)))
	_, ok := tr.Refresh(ctx)
	assert.False(t, ok)
}
