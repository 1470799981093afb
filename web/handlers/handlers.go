package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"axiapac.com/timeclock/security"
	"axiapac.com/timeclock/service"
	"axiapac.com/timeclock/session"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/utils"
	"axiapac.com/timeclock/web/common"
	"axiapac.com/timeclock/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

type Sessions interface {
	Status() service.Status
	Start(ctx context.Context, req service.StartRequest) (*v1.ClockinDTO, error)
	End(ctx context.Context) (int64, error)
}

type HistorySource interface {
	All(ctx context.Context) ([]v1.HistoryDTO, error)
	ForUser(ctx context.Context, userID string) ([]v1.HistoryDTO, error)
}

type ProjectHistorySource interface {
	List(ctx context.Context) ([]v1.ProjectHistoryDTO, error)
}

type SummarySource interface {
	All(ctx context.Context) (*v1.SummaryDTO, error)
	ForUser(ctx context.Context, userID string) (*v1.SummaryDTO, error)
}

type ChartSource interface {
	ChartData(ctx context.Context, userID string) ([]v1.MonthlyHoursDTO, error)
}

type Handlers struct {
	Sessions       Sessions
	History        HistorySource
	ProjectHistory ProjectHistorySource
	Summary        SummarySource
	Chart          ChartSource
	// PhotoBaseURL prefixes the photo paths of history entries.
	PhotoBaseURL   string
	Location       *time.Location
	GeofenceRadius float64
	Clock          utils.Clock
	Logger         hclog.Logger
}

func (h *Handlers) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock.Now()
}

func (h *Handlers) logger() hclog.Logger {
	if h.Logger == nil {
		return hclog.NewNullLogger()
	}
	return h.Logger
}

func identity(c *gin.Context) security.Identity {
	id, _ := middlewares.GetIdentity(c)
	return id
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, common.NewBindingErrorResponse(err))
}

// respondError maps workflow and API errors to status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var (
		apiErr       *v1.APIError
		detectionErr *service.DetectionFailedError
		status       int
	)
	switch {
	case errors.Is(err, service.ErrProjectRequired),
		errors.Is(err, service.ErrLocationRequired),
		errors.Is(err, service.ErrPhotoRequired):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotApproved), errors.As(err, &detectionErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrActiveSession), errors.Is(err, session.ErrSessionEnding):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoSession):
		status = http.StatusNotFound
	case errors.Is(err, security.ErrNoCredentials), errors.Is(err, v1.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		c.JSON(status, common.NewErrorResponse(apiErr.Message()))
		return
	default:
		h.logger().Error("request failed", "path", c.FullPath(), "error", err)
		status = http.StatusInternalServerError
	}
	c.JSON(status, common.NewErrorResponse(err.Error()))
}
