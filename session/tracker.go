package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"axiapac.com/timeclock/utils"
	"github.com/hashicorp/go-hclog"
)

type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
	StateEnding State = "ending"
)

const DefaultTickInterval = time.Second

// Reporter sends the final elapsed time of a clock-in to the server.
type Reporter interface {
	EndSession(ctx context.Context, id string, elapsedMs int64) error
}

type ReporterFunc func(ctx context.Context, id string, elapsedMs int64) error

func (f ReporterFunc) EndSession(ctx context.Context, id string, elapsedMs int64) error {
	return f(ctx, id, elapsedMs)
}

type Options struct {
	Clock        utils.Clock
	Logger       hclog.Logger
	TickInterval time.Duration
	// OnTick receives the formatted elapsed time while a session is active.
	OnTick func(display string)
}

// Tracker owns the open clock-in of one user.
type Tracker struct {
	mu       sync.Mutex
	key      string
	store    Store
	reporter Reporter
	clock    utils.Clock
	logger   hclog.Logger
	interval time.Duration
	onTick   func(string)

	state  State
	record Record
	stop   chan struct{}
	done   chan struct{}
}

func NewTracker(userID string, store Store, reporter Reporter, opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = utils.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Tracker{
		key:      Key(userID),
		store:    store,
		reporter: reporter,
		clock:    opts.Clock,
		logger:   opts.Logger.Named("session"),
		interval: opts.TickInterval,
		onTick:   opts.OnTick,
		state:    StateIdle,
	}
}

func (t *Tracker) Key() string {
	return t.key
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Active returns a copy of the open record.
func (t *Tracker) Active() (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateIdle {
		return Record{}, false
	}
	return t.record, true
}

func (t *Tracker) Elapsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateIdle {
		return 0
	}
	return t.record.Elapsed(t.clock.Now())
}

func (t *Tracker) Display() string {
	return FormatElapsed(t.Elapsed())
}

// Start opens a new session for a clock-in the server has just accepted.
func (t *Tracker) Start(ctx context.Context, id, startTime string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return ErrActiveSession
	}

	now := t.clock.Now()
	rec := NewRecord(id, startTime, now)
	if err := t.store.Save(ctx, t.key, rec, now.Add(Expiry)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	t.record = rec
	t.state = StateActive
	t.startTimer()
	t.logger.Info("session started", "id", id, "start_time", startTime)
	return nil
}

// Resume restores a persisted session. It reports false when there is
// nothing to resume; an unreadable record is discarded.
func (t *Tracker) Resume(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return true, nil
	}

	rec, err := t.store.Load(ctx, t.key)
	switch {
	case errors.Is(err, ErrNoSession):
		return false, nil
	case errors.Is(err, ErrMalformedRecord):
		t.logger.Warn("discarding malformed session record", "key", t.key)
		if err := t.store.Delete(ctx, t.key); err != nil {
			t.logger.Warn("failed to delete malformed record", "key", t.key, "error", err)
		}
		return false, nil
	case err != nil:
		return false, fmt.Errorf("load session: %w", err)
	}

	now := t.clock.Now()
	rec = rec.Rebase(now)
	if err := t.store.Save(ctx, t.key, rec, now.Add(Expiry)); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}

	t.record = rec
	t.state = StateActive
	t.startTimer()
	t.logger.Info("session resumed", "id", rec.ID, "accumulated_ms", rec.Accumulated)
	return true, nil
}

// End reports the elapsed time and closes the session. When the server
// rejects the report the session stays active so the caller can retry.
func (t *Tracker) End(ctx context.Context) (int64, error) {
	t.mu.Lock()
	switch t.state {
	case StateIdle:
		t.mu.Unlock()
		return 0, ErrNoSession
	case StateEnding:
		t.mu.Unlock()
		return 0, ErrSessionEnding
	}
	t.state = StateEnding
	rec := t.record
	elapsed := rec.Elapsed(t.clock.Now())
	t.mu.Unlock()

	if err := t.reporter.EndSession(ctx, rec.ID, elapsed); err != nil {
		t.mu.Lock()
		t.state = StateActive
		t.mu.Unlock()
		t.logger.Error("failed to end session", "id", rec.ID, "error", err)
		return 0, fmt.Errorf("end session %s: %w", rec.ID, err)
	}

	t.mu.Lock()
	t.stopTimer()
	if err := t.store.Delete(ctx, t.key); err != nil {
		t.logger.Warn("failed to delete session record", "key", t.key, "error", err)
	}
	t.record = Record{}
	t.state = StateIdle
	t.mu.Unlock()

	t.publish(FormatElapsed(0))
	t.logger.Info("session ended", "id", rec.ID, "elapsed_ms", elapsed)
	return elapsed, nil
}

// Refresh re-reads the persisted record. When another process has ended or
// replaced the session, the local one is closed and false is returned. A
// store error keeps the local session open.
func (t *Tracker) Refresh(ctx context.Context) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateIdle:
		return Record{}, false
	case StateEnding:
		return t.record, true
	}

	rec, err := t.store.Load(ctx, t.key)
	switch {
	case err == nil && rec.ID == t.record.ID:
		return t.record, true
	case err == nil, errors.Is(err, ErrNoSession), errors.Is(err, ErrMalformedRecord):
		t.stopTimer()
		t.logger.Info("session closed by another process", "id", t.record.ID)
		t.record = Record{}
		t.state = StateIdle
		return Record{}, false
	default:
		t.logger.Warn("failed to refresh session", "key", t.key, "error", err)
		return t.record, true
	}
}

// Close stops the display timer without touching the persisted record.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimer()
}

func (t *Tracker) publish(display string) {
	if t.onTick != nil {
		t.onTick(display)
	}
}

// startTimer must be called with mu held.
func (t *Tracker) startTimer() {
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				if t.state == StateIdle {
					t.mu.Unlock()
					continue
				}
				display := FormatElapsed(t.record.Elapsed(t.clock.Now()))
				t.mu.Unlock()
				t.publish(display)
			}
		}
	}()
}

// stopTimer must be called with mu held.
func (t *Tracker) stopTimer() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
	// the ticker goroutine takes mu, so wait without holding it
	done := t.done
	t.done = nil
	t.mu.Unlock()
	<-done
	t.mu.Lock()
}
