package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"axiapac.com/timeclock/config"
	"axiapac.com/timeclock/core"
	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/infrastructure/communication"
	"axiapac.com/timeclock/infrastructure/devops"
	"axiapac.com/timeclock/logging"
	"axiapac.com/timeclock/security"
	"axiapac.com/timeclock/service"
	"axiapac.com/timeclock/session"
	"axiapac.com/timeclock/session/store"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/utils"
	"github.com/hashicorp/go-hclog"
)

type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
	useSSM     bool
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger hclog.Logger
	clock  utils.Clock
	auth   *security.AuthContext
	client *v1.Client
	db     *core.DatabaseManager
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	loadOpts := config.LoadOptions{EnvFile: opts.envFile, File: opts.configFile}
	if opts.useSSM {
		loadOpts.Parameters = devops.LoadParameter
	}
	cfg, err := config.Load(ctx, loadOpts)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger := logging.New("timeclock", cfg.LogLevel, cfg.LogJSON)
	auth := security.NewAuthContext(security.NewFileCredentialStore(cfg.StateDir))
	if err := auth.Restore(); err != nil {
		logger.Debug("no stored credentials", "error", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		clock:  utils.SystemClock{},
		auth:   auth,
		client: v1.NewClient(cfg.APIURL, auth, logger),
	}, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}

func (a *app) identity() (security.Identity, error) {
	return a.auth.Require(a.clock.Now())
}

func (a *app) sessionStore(ctx context.Context) (session.Store, error) {
	switch a.cfg.SessionStore {
	case config.SessionStoreMySQL:
		if a.db == nil {
			db, err := core.New(a.cfg.MySQL.DSN, a.cfg.MySQL.Schema, a.cfg.MySQL.MaxConnections)
			if err != nil {
				return nil, err
			}
			db.LogLevel = core.ParseLogLevel(a.cfg.LogLevel)
			a.db = db
		}
		s := store.NewGormStore(a.db, a.clock)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewCookieStore(a.cfg.SessionDir(), a.clock), nil
	}
}

// clockinService wires the tracker of the signed-in user. onTick may be nil.
func (a *app) clockinService(ctx context.Context, onTick func(string)) (*service.ClockinService, error) {
	identity, err := a.identity()
	if err != nil {
		return nil, err
	}
	st, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	tracker := session.NewTracker(identity.UserID, st, a.client.Clockins, session.Options{
		Clock:  a.clock,
		Logger: a.logger,
		OnTick: onTick,
	})
	svc := service.NewClockinService(a.client.Clockins, a.client.Detection, a.auth, tracker, a.clock, a.logger)
	svc.DetectionInterval = a.cfg.DetectionInterval
	svc.Notifier = a.notifier()
	return svc, nil
}

func (a *app) notifier() service.Notifier {
	notifiers := service.MultiNotifier{service.LogNotifier{Logger: a.logger.Named("alerts")}}
	if a.cfg.Slack.Token != "" {
		notifiers = append(notifiers, communication.NewSlack(a.cfg.Slack.Token, communication.SlackOption{
			InfoChannelID:  a.cfg.Slack.InfoChannel,
			ErrorChannelID: a.cfg.Slack.ErrorChannel,
		}))
	}
	return notifiers
}

// pinger builds the location reporter. A position file wins over fixed coordinates.
func (a *app) pinger(svc *service.ClockinService, userID, positionFile string, fixed *geo.Point) (*service.LocationPinger, error) {
	var source service.PositionSource
	switch {
	case positionFile != "":
		source = service.FilePosition(filepath.Clean(positionFile))
	case fixed != nil:
		source = service.StaticPosition(*fixed)
	default:
		return nil, fmt.Errorf("--position-file or --lat/--lng is required")
	}

	notifier := a.notifier()
	return &service.LocationPinger{
		Locations: a.client.Locations,
		Source:    source,
		Session:   svc.Tracker(),
		Watcher:   geo.NewWatcher(a.cfg.GeofenceRadius, nil),
		Notifier:  notifier,
		UserID:    userID,
		Interval:  a.cfg.PingInterval,
		Logger:    a.logger.Named("pinger"),
	}, nil
}

func photoBaseURL(apiURL string) string {
	return strings.TrimRight(apiURL, "/")
}
