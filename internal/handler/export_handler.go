package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/service"
	"github.com/oriel-mfg/factory-ops-api/pkg/response"
)

// ExportHandler serves printable schedule documents.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ExportSchedule godoc
// @Summary Export the schedule of all machines in a window
// @Tags Export
// @Produce application/pdf
// @Param start query string true "Window start (RFC3339)"
// @Param zoom query string false "Zoom level (hour|day|week)"
// @Param format query string false "pdf or csv"
// @Success 200 {file} binary
// @Router /schedule/export [get]
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	start, err := parseStart(c.Query("start"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ExportSchedule(
		c.Request.Context(),
		start,
		models.ZoomLevel(c.DefaultQuery("zoom", string(models.ZoomDay))),
		c.DefaultQuery("format", service.FormatPDF),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}

// ExportMachineSchedule godoc
// @Summary Export one machine's schedule in a window
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Machine ID"
// @Param start query string true "Window start (RFC3339)"
// @Param zoom query string false "Zoom level (hour|day|week)"
// @Param format query string false "pdf or csv"
// @Success 200 {file} binary
// @Router /machines/{id}/schedule/export [get]
func (h *ExportHandler) ExportMachineSchedule(c *gin.Context) {
	start, err := parseStart(c.Query("start"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ExportMachineSchedule(
		c.Request.Context(),
		c.Param("id"),
		start,
		models.ZoomLevel(c.DefaultQuery("zoom", string(models.ZoomDay))),
		c.DefaultQuery("format", service.FormatPDF),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}
