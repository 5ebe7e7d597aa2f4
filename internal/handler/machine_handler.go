package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
	"github.com/oriel-mfg/factory-ops-api/pkg/response"
)

const maxMachinePageSize = 200

type machineDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Machine, error)
	List(ctx context.Context, filter models.MachineFilter) ([]models.Machine, int, error)
}

// MachineHandler exposes thin reads over the machine park.
type MachineHandler struct {
	machines machineDirectory
}

// NewMachineHandler constructs handler.
func NewMachineHandler(machines machineDirectory) *MachineHandler {
	return &MachineHandler{machines: machines}
}

// List godoc
// @Summary List machines
// @Tags Machines
// @Produce json
// @Param status query string false "Filter by availability status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /machines [get]
func (h *MachineHandler) List(c *gin.Context) {
	filter := models.MachineFilter{
		Status:   c.Query("status"),
		Page:     normalizePage(c.Query("page")),
		PageSize: normalizePageSize(c.Query("limit")),
	}

	machines, total, err := h.machines.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list machines"))
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, machines, pagination)
}

// normalizePage and normalizePageSize resolve query values to the
// values the store will actually page with, so the response envelope
// never echoes a page the query did not serve.
func normalizePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func normalizePageSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		return 50
	}
	if size > maxMachinePageSize {
		return maxMachinePageSize
	}
	return size
}

// Get godoc
// @Summary Get a machine
// @Tags Machines
// @Produce json
// @Param id path string true "Machine ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /machines/{id} [get]
func (h *MachineHandler) Get(c *gin.Context) {
	machine, err := h.machines.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "machine not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load machine"))
		return
	}
	response.JSON(c, http.StatusOK, machine, nil)
}
