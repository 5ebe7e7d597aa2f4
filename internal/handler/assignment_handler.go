package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/service"
	"github.com/oriel-mfg/factory-ops-api/pkg/response"
)

// AssignmentHandler manages machine assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Create an assignment batch for a work order
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentsRequest true "Assignment batch"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	assignments, err := h.service.CreateAssignments(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignments)
}

// ListByMachine godoc
// @Summary List assignments on a machine
// @Tags Assignments
// @Produce json
// @Param id path string true "Machine ID"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /machines/{id}/assignments [get]
func (h *AssignmentHandler) ListByMachine(c *gin.Context) {
	status := models.AssignmentStatus(c.Query("status"))
	assignments, err := h.service.MachineSchedule(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ListByWorkOrder godoc
// @Summary List assignments for a work order
// @Tags Assignments
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} response.Envelope
// @Router /work-orders/{id}/assignments [get]
func (h *AssignmentHandler) ListByWorkOrder(c *gin.Context) {
	assignments, err := h.service.WorkOrderSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

type reassignRequest struct {
	MachineID string `json:"machine_id" binding:"required"`
}

// Reassign godoc
// @Summary Move an assignment to another machine
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body reassignRequest true "Target machine"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/machine [patch]
func (h *AssignmentHandler) Reassign(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	result, err := h.service.Reassign(c.Request.Context(), c.Param("id"), req.MachineID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if len(result.Overlaps) > 0 {
		meta = map[string]interface{}{"overlaps": result.Overlaps}
	}
	response.JSON(c, http.StatusOK, result.Assignment, nil, meta)
}

type statusRequest struct {
	Status models.AssignmentStatus `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Apply a lifecycle transition to an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body statusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/status [patch]
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	assignment, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
