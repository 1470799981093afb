package handlers

import (
	"mime/multipart"
	"net/http"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/service"
	"axiapac.com/timeclock/session"
	"axiapac.com/timeclock/timeclock/v1/common"
	webcommon "axiapac.com/timeclock/web/common"
	"github.com/gin-gonic/gin"
)

type StartForm struct {
	ProjectID    string                `form:"project_id" binding:"required"`
	Latitude     *float64              `form:"latitude" binding:"required,min=-90,max=90"`
	Longitude    *float64              `form:"longitude" binding:"required,min=-180,max=180"`
	State        string                `form:"state"`
	City         string                `form:"city"`
	Street       string                `form:"street"`
	StreetNumber string                `form:"street_number"`
	PostalCode   string                `form:"postal_code"`
	Photo        *multipart.FileHeader `form:"photo" binding:"required"`
}

type EndResponse struct {
	ElapsedMs int64  `json:"elapsedMs"`
	Display   string `json:"display"`
}

func (h *Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, webcommon.NewSuccessResponse(h.Sessions.Status()))
}

// StartSession clocks in with a photo and the confirmed location.
func (h *Handlers) StartSession(c *gin.Context) {
	var form StartForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, err)
		return
	}

	photo, name, err := readPhoto(form.Photo)
	if err != nil {
		c.JSON(http.StatusBadRequest, webcommon.NewErrorResponse(err.Error()))
		return
	}

	clockin, err := h.Sessions.Start(c.Request.Context(), service.StartRequest{
		ProjectID: form.ProjectID,
		Location:  &geo.Point{Lat: *form.Latitude, Lng: *form.Longitude},
		Address: common.Address{
			State:        form.State,
			City:         form.City,
			Street:       form.Street,
			StreetNumber: form.StreetNumber,
			PostalCode:   form.PostalCode,
		},
		Photo:     photo,
		PhotoName: name,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger().Info("clocked in", "user_id", identity(c).UserID, "clockin_id", clockin.ID)
	c.JSON(http.StatusCreated, webcommon.NewSuccessResponse(clockin))
}

func (h *Handlers) EndSession(c *gin.Context) {
	elapsed, err := h.Sessions.End(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, webcommon.NewSuccessResponse(EndResponse{
		ElapsedMs: elapsed,
		Display:   session.FormatElapsed(elapsed),
	}))
}
