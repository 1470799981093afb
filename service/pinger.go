package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/session"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"github.com/hashicorp/go-hclog"
)

const DefaultPingInterval = 5 * time.Minute

type PositionSource interface {
	Position(ctx context.Context) (geo.Point, error)
}

type StaticPosition geo.Point

func (p StaticPosition) Position(context.Context) (geo.Point, error) {
	return geo.Point(p), nil
}

// FilePosition reads {"lat":..,"lng":..} from a file kept current by a GPS helper.
type FilePosition string

func (f FilePosition) Position(context.Context) (geo.Point, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return geo.Point{}, fmt.Errorf("read position: %w", err)
	}
	var p geo.Point
	if err := json.Unmarshal(data, &p); err != nil {
		return geo.Point{}, fmt.Errorf("decode position: %w", err)
	}
	return p, nil
}

type LocationAPI interface {
	Post(ctx context.Context, input v1.LocationInput) (*v1.LocationDTO, error)
}

// ActiveSession reports the open record as currently persisted, so a
// clock-out from another process is seen.
type ActiveSession interface {
	Refresh(ctx context.Context) (session.Record, bool)
}

// LocationPinger reports the user's position while a session is open and
// checks it against the geofence.
type LocationPinger struct {
	Locations LocationAPI
	Source    PositionSource
	Session   ActiveSession
	Watcher   *geo.Watcher
	Notifier  Notifier
	UserID    string
	Interval  time.Duration
	Logger    hclog.Logger
}

// Run pings once immediately and then every Interval. It returns nil when the
// session closes and ctx.Err() when cancelled.
func (p *LocationPinger) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	if p.Logger == nil {
		p.Logger = hclog.NewNullLogger()
	}

	if done := p.ping(ctx); done {
		return nil
	}
	err := Poll(ctx, interval, func(ctx context.Context) (bool, error) {
		return p.ping(ctx), nil
	})
	return err
}

// ping reports whether the session has closed.
func (p *LocationPinger) ping(ctx context.Context) bool {
	rec, ok := p.Session.Refresh(ctx)
	if !ok {
		return true
	}

	pos, err := p.Source.Position(ctx)
	if err != nil {
		p.Logger.Warn("position unavailable", "error", err)
		return false
	}

	if _, err := p.Locations.Post(ctx, v1.LocationInput{
		Latitude:  pos.Lat,
		Longitude: pos.Lng,
		ClockinID: rec.ID,
	}); err != nil {
		p.Logger.Warn("failed to post location", "clockin_id", rec.ID, "error", err)
	}

	if p.Watcher == nil {
		return false
	}
	res := p.Watcher.Observe(pos)
	if res.Exited && p.Notifier != nil {
		alert := Alert{
			Kind:      AlertGeofenceExit,
			UserID:    p.UserID,
			ClockinID: rec.ID,
			Distance:  res.Distance,
			Message:   fmt.Sprintf("left the work area: %.0f m from the clock-in point", res.Distance),
		}
		if err := p.Notifier.Notify(ctx, alert); err != nil {
			p.Logger.Warn("failed to deliver alert", "error", err)
		}
	}
	return false
}
