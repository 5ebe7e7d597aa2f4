package handler

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/repository"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
	"github.com/oriel-mfg/factory-ops-api/pkg/response"
)

// WorkOrderHandler exposes thin reads over work orders plus their
// scheduling audit trail.
type WorkOrderHandler struct {
	workOrders *repository.WorkOrderRepository
	audits     *repository.AuditRepository
}

// NewWorkOrderHandler constructs handler.
func NewWorkOrderHandler(workOrders *repository.WorkOrderRepository, audits *repository.AuditRepository) *WorkOrderHandler {
	return &WorkOrderHandler{workOrders: workOrders, audits: audits}
}

// Get godoc
// @Summary Get a work order
// @Tags WorkOrders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /work-orders/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	order, err := h.workOrders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "work order not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work order"))
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// AuditTrail godoc
// @Summary List scheduling audit entries for a work order
// @Tags WorkOrders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} response.Envelope
// @Router /work-orders/{id}/audit [get]
func (h *WorkOrderHandler) AuditTrail(c *gin.Context) {
	entries, err := h.audits.ListByWorkOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit entries"))
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
