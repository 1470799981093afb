package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/security"
	"axiapac.com/timeclock/session"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/timeclock/v1/common"
	"axiapac.com/timeclock/utils"
	"github.com/hashicorp/go-hclog"
)

const DefaultDetectionInterval = 2 * time.Second

var (
	ErrProjectRequired  = errors.New("select a project")
	ErrLocationRequired = errors.New("confirm your location")
	ErrPhotoRequired    = errors.New("a photo is required")
	ErrNotApproved      = errors.New("photo does not meet the safety equipment requirements")
)

// DetectionFailedError is returned when the detection task ends in failure.
type DetectionFailedError struct {
	TaskID string
	Reason string
}

func (e *DetectionFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("detection task %s failed", e.TaskID)
	}
	return e.Reason
}

type ClockinAPI interface {
	StartWithPhoto(ctx context.Context, start v1.ClockinStart) (*v1.ClockinDTO, error)
	EndSession(ctx context.Context, id string, elapsedMs int64) error
}

type DetectionAPI interface {
	Detect(ctx context.Context, userID string, start v1.ClockinStart) (*v1.DetectResponse, error)
	SaveTaskMetadata(ctx context.Context, taskID string, meta v1.TaskMetadata) error
	TaskStatus(ctx context.Context, taskID string) (*v1.TaskStatusDTO, error)
}

type StartRequest struct {
	ProjectID string
	Location  *geo.Point
	Address   common.Address
	Photo     []byte
	PhotoName string
}

func (r StartRequest) validate() error {
	if r.ProjectID == "" {
		return ErrProjectRequired
	}
	if r.Location == nil {
		return ErrLocationRequired
	}
	if len(r.Photo) == 0 {
		return ErrPhotoRequired
	}
	return nil
}

type Status struct {
	State     session.State `json:"state"`
	ClockinID string        `json:"clockinId,omitempty"`
	StartTime string        `json:"startTime,omitempty"`
	ElapsedMs int64         `json:"elapsedMs"`
	Display   string        `json:"display"`
}

// ClockinService runs the clock-in and clock-out workflow of one user.
type ClockinService struct {
	clockins          ClockinAPI
	detection         DetectionAPI
	auth              *security.AuthContext
	tracker           *session.Tracker
	clock             utils.Clock
	logger            hclog.Logger
	DetectionInterval time.Duration
	// Notifier, when set, is told about every completed clock-out.
	Notifier Notifier
}

func NewClockinService(clockins ClockinAPI, detection DetectionAPI, auth *security.AuthContext, tracker *session.Tracker, clock utils.Clock, logger hclog.Logger) *ClockinService {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ClockinService{
		clockins:          clockins,
		detection:         detection,
		auth:              auth,
		tracker:           tracker,
		clock:             clock,
		logger:            logger.Named("clockin"),
		DetectionInterval: DefaultDetectionInterval,
	}
}

func (s *ClockinService) Tracker() *session.Tracker {
	return s.tracker
}

// Start opens a clock-in on the server and begins timing it locally.
// Field staff go through photo detection first.
func (s *ClockinService) Start(ctx context.Context, req StartRequest) (*v1.ClockinDTO, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	identity, err := s.auth.Require(s.clock.Now())
	if err != nil {
		return nil, err
	}
	if s.tracker.State() != session.StateIdle {
		return nil, session.ErrActiveSession
	}

	start := v1.ClockinStart{
		ProjectID: req.ProjectID,
		Latitude:  req.Location.Lat,
		Longitude: req.Location.Lng,
		Address:   req.Address,
		Photo:     req.Photo,
		PhotoName: req.PhotoName,
	}

	var clk *v1.ClockinDTO
	if identity.Role.RequiresDetection() {
		clk, err = s.startWithDetection(ctx, identity.UserID, start)
	} else {
		clk, err = s.clockins.StartWithPhoto(ctx, start)
	}
	if err != nil {
		return nil, err
	}
	if clk.Rejected() {
		s.logger.Info("clock-in rejected", "clockin_id", clk.ID)
		return nil, ErrNotApproved
	}

	startTime := clk.StartTime.Raw
	if startTime == "" {
		startTime = clk.StartTime.Format(time.RFC3339)
	}
	if err := s.tracker.Start(ctx, clk.ID, startTime); err != nil {
		return nil, err
	}
	return clk, nil
}

func (s *ClockinService) startWithDetection(ctx context.Context, userID string, start v1.ClockinStart) (*v1.ClockinDTO, error) {
	task, err := s.detection.Detect(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("detection task queued", "task_id", task.TaskID)

	meta := v1.TaskMetadata{
		ProjectID:  start.ProjectID,
		Latitude:   start.Latitude,
		Longitude:  start.Longitude,
		PostalCode: start.Address.PostalCode,
	}
	if err := s.detection.SaveTaskMetadata(ctx, task.TaskID, meta); err != nil {
		s.logger.Warn("failed to save task metadata", "task_id", task.TaskID, "error", err)
	}

	var result *v1.TaskStatusDTO
	err = Poll(ctx, s.DetectionInterval, func(ctx context.Context) (bool, error) {
		status, err := s.detection.TaskStatus(ctx, task.TaskID)
		if err != nil {
			return false, fmt.Errorf("check detection status: %w", err)
		}
		if status.Done() {
			result = status
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == v1.TaskFailed {
		return nil, &DetectionFailedError{TaskID: task.TaskID, Reason: result.Error}
	}
	return result.Clockin, nil
}

func (s *ClockinService) Resume(ctx context.Context) (bool, error) {
	return s.tracker.Resume(ctx)
}

// End reports the elapsed time to the server and closes the local session.
func (s *ClockinService) End(ctx context.Context) (int64, error) {
	rec, _ := s.tracker.Active()
	elapsed, err := s.tracker.End(ctx)
	if err != nil {
		return 0, err
	}
	if s.Notifier != nil {
		alert := Alert{
			Kind:      AlertClockedOut,
			ClockinID: rec.ID,
			Message:   fmt.Sprintf("clocked out after %s", session.FormatElapsed(elapsed)),
		}
		if identity, ok := s.auth.Identity(); ok {
			alert.UserID = identity.UserID
		}
		if err := s.Notifier.Notify(ctx, alert); err != nil {
			s.logger.Warn("failed to deliver alert", "error", err)
		}
	}
	return elapsed, nil
}

func (s *ClockinService) Status() Status {
	st := Status{State: s.tracker.State(), Display: s.tracker.Display()}
	if rec, ok := s.tracker.Active(); ok {
		st.ClockinID = rec.ID
		st.StartTime = rec.StartTime
		st.ElapsedMs = s.tracker.Elapsed()
	}
	return st
}
