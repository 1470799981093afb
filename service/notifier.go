package service

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"
)

type AlertKind string

const (
	AlertGeofenceExit AlertKind = "geofence_exit"
	AlertClockedOut   AlertKind = "clocked_out"
)

type Alert struct {
	Kind      AlertKind
	UserID    string
	ClockinID string
	Message   string
	Distance  float64
}

// Notifier delivers advisory alerts. Delivery failures never block the workflow.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

type LogNotifier struct {
	Logger hclog.Logger
}

func (n LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.Logger.Warn(alert.Message, "kind", alert.Kind, "user_id", alert.UserID,
		"clockin_id", alert.ClockinID, "distance_m", alert.Distance)
	return nil
}

type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
