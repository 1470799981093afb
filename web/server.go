package web

import (
	"net/http"

	"axiapac.com/timeclock/utils"
	"axiapac.com/timeclock/web/handlers"
	"axiapac.com/timeclock/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

type Options struct {
	// Owner is the user id whose session the agent tracks.
	Owner     string
	JWTSecret []byte
	Clock     utils.Clock
	Logger    hclog.Logger
}

// NewRouter builds the local agent's routes.
func NewRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))
	r.MaxMultipartMemory = handlers.MaxPhotoSize

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/")
	protected.Use(middlewares.Authentication(opts.JWTSecret, opts.Clock))
	{
		owned := protected.Group("/session", middlewares.RequireUser(opts.Owner))
		owned.GET("", h.GetSession)
		owned.POST("/start", h.StartSession)
		owned.POST("/end", h.EndSession)
		protected.POST("/geofence/check", h.CheckGeofence)
		protected.POST("/records/search", h.SearchRecords)
		protected.POST("/export/records", h.ExportRecords)
		protected.GET("/export/project-history", middlewares.RequireAdmin(), h.ExportProjectHistory)
		protected.GET("/summary", h.GetSummary)
		protected.GET("/chart", h.GetChart)
	}

	return r
}

func requestLogger(logger hclog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
