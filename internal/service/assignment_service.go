package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/repository"
	"github.com/oriel-mfg/factory-ops-api/pkg/config"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

type workOrderReader interface {
	FindByID(ctx context.Context, id string) (*models.WorkOrder, error)
}

type machineReader interface {
	FindByID(ctx context.Context, id string) (*models.Machine, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Machine, error)
}

type assignmentStore interface {
	CreateBatch(ctx context.Context, assignments []*models.Assignment, audit *models.AuditEntry) error
	ListByMachine(ctx context.Context, machineID string, status models.AssignmentStatus) ([]models.AssignmentDetail, error)
	ListByWorkOrder(ctx context.Context, workOrderID string) ([]models.AssignmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	UpdateMachine(ctx context.Context, assignmentID, newMachineID string) error
	UpdateStatus(ctx context.Context, assignmentID string, newStatus models.AssignmentStatus) error
	ListOverlapping(ctx context.Context, machineID string, start, end time.Time, excludeID string) ([]models.Assignment, error)
}

type overrideAuthority interface {
	Authorize(ctx context.Context, actor Actor, requested *float64, workOrderDefault float64) (models.EffectiveCycleTime, error)
}

// CreateAssignmentsRequest is the assignment-creation payload.
type CreateAssignmentsRequest struct {
	WorkOrderID       string    `json:"work_order_id" validate:"required"`
	MachineIDs        []string  `json:"machine_ids" validate:"required,min=1,dive,required"`
	Start             time.Time `json:"start" validate:"required"`
	OverrideCycleTime *float64  `json:"override_cycle_time,omitempty"`
}

// ReassignResult reports the outcome of a reassignment intent.
type ReassignResult struct {
	Assignment *models.Assignment  `json:"assignment"`
	Moved      bool                `json:"moved"`
	Overlaps   []models.Assignment `json:"overlaps,omitempty"`
}

// AssignmentService orchestrates machine assignment and scheduling.
type AssignmentService struct {
	workOrders    workOrderReader
	machines      machineReader
	assignments   assignmentStore
	overrides     overrideAuthority
	notifier      ChangeNotifier
	overlapPolicy string
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *MetricsService
}

// NewAssignmentService creates a service instance.
func NewAssignmentService(
	workOrders workOrderReader,
	machines machineReader,
	assignments assignmentStore,
	overrides overrideAuthority,
	notifier ChangeNotifier,
	overlapPolicy string,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if overlapPolicy == "" {
		overlapPolicy = config.OverlapWarn
	}
	return &AssignmentService{
		workOrders:    workOrders,
		machines:      machines,
		assignments:   assignments,
		overrides:     overrides,
		notifier:      notifier,
		overlapPolicy: overlapPolicy,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
	}
}

// CreateAssignments allocates a work order's quantity across the
// selected machines and writes the batch, with the optional audit
// entry, in one transaction. No rows are written when any precondition
// fails.
func (s *AssignmentService) CreateAssignments(ctx context.Context, actor Actor, req CreateAssignmentsRequest) ([]*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if hasDuplicates(req.MachineIDs) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "machine selection contains duplicates")
	}

	order, err := s.workOrders.FindByID(ctx, req.WorkOrderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work order")
	}
	if !order.MaterialQCPassed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "material quality gate not passed")
	}

	var defaultCycle float64
	if order.HasDefaultCycleTime() {
		defaultCycle = *order.CycleTimeSeconds
	} else if req.OverrideCycleTime == nil || *req.OverrideCycleTime <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "work order has no cycle time and no override was requested")
	}

	machines, err := s.machines.FindByIDs(ctx, req.MachineIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load machines")
	}
	if len(machines) != len(req.MachineIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more machines not found")
	}
	// Availability is checked here, at selection time, and deliberately
	// not re-validated at commit. Last write wins.
	for _, machine := range machines {
		if !machine.Selectable() {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "machine "+machine.Code+" is not idle")
		}
	}

	effective, err := s.overrides.Authorize(ctx, actor, req.OverrideCycleTime, defaultCycle)
	if err != nil {
		return nil, err
	}

	plan, err := PlanAllocation(order.Quantity, effective.Seconds, len(req.MachineIDs), req.Start)
	if err != nil {
		return nil, err
	}
	quantities := SplitQuantity(order.Quantity, len(req.MachineIDs))

	assignments := make([]*models.Assignment, len(req.MachineIDs))
	for i, machineID := range req.MachineIDs {
		assignment := &models.Assignment{
			WorkOrderID:    order.ID,
			MachineID:      machineID,
			ScheduledStart: plan.Start,
			ScheduledEnd:   plan.End,
			Quantity:       quantities[i],
			Status:         models.AssignmentScheduled,
		}
		if effective.Override != nil {
			assignment.OverrideCycleTime = &effective.Override.NewSeconds
			assignment.OverrideAppliedBy = &effective.Override.AppliedBy
			assignment.OverrideAppliedAt = &effective.Override.AppliedAt
			assignment.OriginalCycleTime = &effective.Override.OriginalSeconds
		}
		assignments[i] = assignment
	}

	var audit *models.AuditEntry
	if effective.Override != nil {
		detail, err := json.Marshal(models.OverrideAuditDetail{
			OriginalCycleTime: effective.Override.OriginalSeconds,
			OverrideCycleTime: effective.Override.NewSeconds,
			MachineCount:      len(req.MachineIDs),
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode audit detail")
		}
		audit = &models.AuditEntry{
			WorkOrderID: order.ID,
			Action:      models.AuditActionCycleTimeOverride,
			Actor:       effective.Override.AppliedBy,
			Detail:      detail,
			CreatedAt:   effective.Override.AppliedAt,
		}
	}

	if err := s.assignments.CreateBatch(ctx, assignments, audit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write assignment batch")
	}

	s.metrics.RecordAssignmentsCreated(len(assignments), audit != nil)
	s.logger.Info("assignment_batch_created",
		zap.String("work_order_id", order.ID),
		zap.Int("machines", len(assignments)),
		zap.Bool("override", audit != nil),
	)
	s.notifier.Publish(ctx, ChangeEvent{
		Kind:        ChangeAssignmentsCreated,
		WorkOrderID: order.ID,
		At:          time.Now().UTC(),
	})

	return assignments, nil
}

// Reassign moves an existing assignment to another machine in response
// to a drag-drop intent. Start, end, quantity and status are
// preserved; timing is never recomputed and the quality gate is not
// re-checked. Reassigning to the current machine is a no-op.
func (s *AssignmentService) Reassign(ctx context.Context, assignmentID, targetMachineID string) (*ReassignResult, error) {
	if targetMachineID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target machine is required")
	}

	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if assignment.MachineID == targetMachineID {
		return &ReassignResult{Assignment: assignment, Moved: false}, nil
	}

	if _, err := s.machines.FindByID(ctx, targetMachineID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target machine not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target machine")
	}

	var overlaps []models.Assignment
	if s.overlapPolicy != config.OverlapPermit {
		overlaps, err = s.assignments.ListOverlapping(ctx, targetMachineID, assignment.ScheduledStart, assignment.ScheduledEnd, assignment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check target machine window")
		}
		if s.overlapPolicy == config.OverlapForbid && len(overlaps) > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "target machine has an overlapping assignment")
		}
	}

	if err := s.assignments.UpdateMachine(ctx, assignment.ID, targetMachineID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move assignment")
	}
	assignment.MachineID = targetMachineID

	s.metrics.RecordReassignment()
	s.logger.Info("assignment_moved",
		zap.String("assignment_id", assignment.ID),
		zap.String("machine_id", targetMachineID),
		zap.Int("overlaps", len(overlaps)),
	)
	s.notifier.Publish(ctx, ChangeEvent{
		Kind:        ChangeAssignmentMoved,
		WorkOrderID: assignment.WorkOrderID,
		MachineID:   targetMachineID,
		At:          time.Now().UTC(),
	})

	return &ReassignResult{Assignment: assignment, Moved: true, Overlaps: overlaps}, nil
}

// UpdateStatus applies an externally driven lifecycle transition.
func (s *AssignmentService) UpdateStatus(ctx context.Context, assignmentID string, status models.AssignmentStatus) (*models.Assignment, error) {
	if !models.ValidStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}

	if err := s.assignments.UpdateStatus(ctx, assignmentID, status); err != nil {
		switch {
		case err == sql.ErrNoRows:
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		case errors.Is(err, repository.ErrIllegalTransition):
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment cannot transition to "+string(status))
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment status")
		}
	}

	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload assignment")
	}

	s.notifier.Publish(ctx, ChangeEvent{
		Kind:        ChangeAssignmentStatusSet,
		WorkOrderID: assignment.WorkOrderID,
		MachineID:   assignment.MachineID,
		At:          time.Now().UTC(),
	})
	return assignment, nil
}

// MachineSchedule lists a machine's assignments, optionally filtered
// by status.
func (s *AssignmentService) MachineSchedule(ctx context.Context, machineID string, status models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}
	if _, err := s.machines.FindByID(ctx, machineID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "machine not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load machine")
	}
	assignments, err := s.assignments.ListByMachine(ctx, machineID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list machine schedule")
	}
	return assignments, nil
}

// WorkOrderSchedule lists every assignment created for a work order.
func (s *AssignmentService) WorkOrderSchedule(ctx context.Context, workOrderID string) ([]models.AssignmentDetail, error) {
	if _, err := s.workOrders.FindByID(ctx, workOrderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work order")
	}
	assignments, err := s.assignments.ListByWorkOrder(ctx, workOrderID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work order schedule")
	}
	return assignments, nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
