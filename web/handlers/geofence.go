package handlers

import (
	"net/http"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/web/common"
	"github.com/gin-gonic/gin"
)

type GeofenceRequest struct {
	Center   *geo.Point `json:"center" binding:"required"`
	Position *geo.Point `json:"position" binding:"required"`
	Radius   float64    `json:"radius" binding:"omitempty,gt=0"`
}

type GeofenceResponse struct {
	geo.Result
	Radius float64 `json:"radius"`
}

func (h *Handlers) CheckGeofence(c *gin.Context) {
	var req GeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	radius := req.Radius
	if radius == 0 {
		radius = h.GeofenceRadius
	}
	if radius == 0 {
		radius = geo.DefaultRadius
	}

	result := geo.Check(*req.Center, *req.Position, radius)
	c.JSON(http.StatusOK, common.NewSuccessResponse(GeofenceResponse{Result: result, Radius: radius}))
}
