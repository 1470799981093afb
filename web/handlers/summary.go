package handlers

import (
	"net/http"

	"axiapac.com/timeclock/report"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/web/common"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetSummary(c *gin.Context) {
	id := identity(c)

	var (
		summary *v1.SummaryDTO
		err     error
	)
	if id.Role.IsAdmin() && c.Query("scope") == "all" {
		summary, err = h.Summary.All(c.Request.Context())
	} else {
		summary, err = h.Summary.ForUser(c.Request.Context(), id.UserID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(summary))
}

func (h *Handlers) GetChart(c *gin.Context) {
	data, err := h.Chart.ChartData(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(report.MonthlyChart(data)))
}
