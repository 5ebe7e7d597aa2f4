package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/service"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
	"github.com/oriel-mfg/factory-ops-api/pkg/response"
)

// TimelineHandler serves Gantt layout projections.
type TimelineHandler struct{}

// NewTimelineHandler constructs handler.
func NewTimelineHandler() *TimelineHandler {
	return &TimelineHandler{}
}

// Project godoc
// @Summary Project a timeline window onto pixel space
// @Tags Timeline
// @Produce json
// @Param start query string true "Window start (RFC3339)"
// @Param zoom query string true "Zoom level (hour|day|week)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timeline [get]
func (h *TimelineHandler) Project(c *gin.Context) {
	start, err := parseStart(c.Query("start"))
	if err != nil {
		response.Error(c, err)
		return
	}

	projection, err := service.ProjectTimeline(start, models.ZoomLevel(c.DefaultQuery("zoom", string(models.ZoomDay))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projection, nil)
}

func parseStart(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start is required")
	}
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start must be RFC3339")
	}
	return start, nil
}
