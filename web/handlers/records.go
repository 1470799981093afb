package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"axiapac.com/timeclock/report"
	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/web/common"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RecordSearchRequest struct {
	Term string          `json:"term"`
	From common.DateOnly `json:"from"`
	To   common.DateOnly `json:"to"`
}

type RecordSearchResult struct {
	Rows       []report.RecordRow `json:"rows"`
	TotalHours float64            `json:"totalHours"`
}

// records loads the caller's history, or everyone's for admins, and applies the filters.
func (h *Handlers) records(c *gin.Context, req RecordSearchRequest) ([]report.RecordRow, error) {
	id := identity(c)

	var (
		history []v1.HistoryDTO
		err     error
	)
	if id.Role.IsAdmin() {
		history, err = h.History.All(c.Request.Context())
	} else {
		history, err = h.History.ForUser(c.Request.Context(), id.UserID)
	}
	if err != nil {
		return nil, err
	}

	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	rows := report.RecordRows(history, h.PhotoBaseURL, loc)
	rows = report.SearchRecords(rows, req.Term)

	return report.RecordsBetween(rows, req.From.StartIn(loc), req.To.EndIn(loc)), nil
}

func (h *Handlers) SearchRecords(c *gin.Context) {
	var req RecordSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rows, err := h.records(c, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result := RecordSearchResult{Rows: rows, TotalHours: report.Total(report.RecordHours(rows))}
	c.JSON(http.StatusOK, common.NewSearchResponse(result, int64(len(rows))))
}

func (h *Handlers) ExportRecords(c *gin.Context) {
	var req RecordSearchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	rows, err := h.records(c, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteRecords(&buf, rows); err != nil {
		h.exportError(c, err)
		return
	}
	h.attach(c, report.FileName(report.RecordSheet, h.now()), buf.Bytes())
}

func (h *Handlers) ExportProjectHistory(c *gin.Context) {
	entries, err := h.ProjectHistory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows := report.SearchProjectHistory(report.ProjectHistoryRows(entries), c.Query("q"))

	var buf bytes.Buffer
	if err := report.WriteProjectHistory(&buf, rows); err != nil {
		h.exportError(c, err)
		return
	}
	h.attach(c, report.FileName(report.HistorySheet, h.now()), buf.Bytes())
}

func (h *Handlers) exportError(c *gin.Context, err error) {
	if errors.Is(err, report.ErrNoData) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse(err.Error()))
		return
	}
	h.respondError(c, err)
}

func (h *Handlers) attach(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
