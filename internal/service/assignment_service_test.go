package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	"github.com/oriel-mfg/factory-ops-api/internal/repository"
	"github.com/oriel-mfg/factory-ops-api/pkg/config"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

type workOrderReaderStub struct {
	items map[string]*models.WorkOrder
}

func (s *workOrderReaderStub) FindByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	if order, ok := s.items[id]; ok {
		cp := *order
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type machineReaderStub struct {
	items map[string]*models.Machine
}

func (s *machineReaderStub) FindByID(ctx context.Context, id string) (*models.Machine, error) {
	if machine, ok := s.items[id]; ok {
		cp := *machine
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *machineReaderStub) FindByIDs(ctx context.Context, ids []string) ([]models.Machine, error) {
	var machines []models.Machine
	for _, id := range ids {
		if machine, ok := s.items[id]; ok {
			machines = append(machines, *machine)
		}
	}
	return machines, nil
}

type assignmentStoreStub struct {
	created      [][]*models.Assignment
	audits       []*models.AuditEntry
	byID         map[string]*models.Assignment
	overlaps     []models.Assignment
	moveArgs     []string
	statusErr    error
	createErr    error
	listByWO     []models.AssignmentDetail
	listByMach   []models.AssignmentDetail
	overlapCalls int
}

func (s *assignmentStoreStub) CreateBatch(ctx context.Context, assignments []*models.Assignment, audit *models.AuditEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, assignments)
	s.audits = append(s.audits, audit)
	return nil
}

func (s *assignmentStoreStub) ListByMachine(ctx context.Context, machineID string, status models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	return s.listByMach, nil
}

func (s *assignmentStoreStub) ListByWorkOrder(ctx context.Context, workOrderID string) ([]models.AssignmentDetail, error) {
	return s.listByWO, nil
}

func (s *assignmentStoreStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if assignment, ok := s.byID[id]; ok {
		cp := *assignment
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStoreStub) UpdateMachine(ctx context.Context, assignmentID, newMachineID string) error {
	s.moveArgs = append(s.moveArgs, assignmentID+":"+newMachineID)
	if assignment, ok := s.byID[assignmentID]; ok {
		assignment.MachineID = newMachineID
	}
	return nil
}

func (s *assignmentStoreStub) UpdateStatus(ctx context.Context, assignmentID string, newStatus models.AssignmentStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	if assignment, ok := s.byID[assignmentID]; ok {
		assignment.Status = newStatus
		return nil
	}
	return sql.ErrNoRows
}

func (s *assignmentStoreStub) ListOverlapping(ctx context.Context, machineID string, start, end time.Time, excludeID string) ([]models.Assignment, error) {
	s.overlapCalls++
	return s.overlaps, nil
}

type notifierStub struct {
	events []ChangeEvent
}

func (s *notifierStub) Publish(ctx context.Context, event ChangeEvent) {
	s.events = append(s.events, event)
}

func cycleTime(v float64) *float64 { return &v }

func newTestFixture(overlapPolicy string) (*AssignmentService, *assignmentStoreStub, *notifierStub) {
	workOrders := &workOrderReaderStub{items: map[string]*models.WorkOrder{
		"wo-1": {ID: "wo-1", Number: "WO-1001", Quantity: 7, CycleTimeSeconds: cycleTime(12), MaterialQCPassed: true},
		"wo-2": {ID: "wo-2", Number: "WO-1002", Quantity: 100, CycleTimeSeconds: cycleTime(10), MaterialQCPassed: false},
		"wo-3": {ID: "wo-3", Number: "WO-1003", Quantity: 50, MaterialQCPassed: true},
		"wo-4": {ID: "wo-4", Number: "WO-1004", Quantity: 1, CycleTimeSeconds: cycleTime(30), MaterialQCPassed: true},
	}}
	machines := &machineReaderStub{items: map[string]*models.Machine{
		"m-1": {ID: "m-1", Code: "CNC-01", Status: models.MachineIdle},
		"m-2": {ID: "m-2", Code: "CNC-02", Status: models.MachineIdle},
		"m-3": {ID: "m-3", Code: "CNC-03", Status: models.MachineDown},
	}}
	store := &assignmentStoreStub{byID: map[string]*models.Assignment{}}
	notifier := &notifierStub{}

	overrides := NewOverrideService(RolePolicyChecker{}, zap.NewNop())
	svc := NewAssignmentService(workOrders, machines, store, overrides, notifier, overlapPolicy, validator.New(), zap.NewNop(), nil)
	return svc, store, notifier
}

func TestCreateAssignmentsSplitsQuantity(t *testing.T) {
	svc, store, notifier := newTestFixture("")
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	assignments, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-1",
		MachineIDs:  []string{"m-1", "m-2"},
		Start:       start,
	})
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	assert.Equal(t, 4, assignments[0].Quantity)
	assert.Equal(t, 3, assignments[1].Quantity)
	for _, assignment := range assignments {
		assert.Positive(t, assignment.Quantity)
	}
	assert.Equal(t, start, assignments[0].ScheduledStart)

	// 12 * 7 / 2 = 42s shared end on both machines
	expectedEnd := start.Add(42 * time.Second)
	assert.Equal(t, expectedEnd, assignments[0].ScheduledEnd)
	assert.Equal(t, expectedEnd, assignments[1].ScheduledEnd)
	assert.Equal(t, models.AssignmentScheduled, assignments[0].Status)

	require.Len(t, store.created, 1)
	assert.Nil(t, store.audits[0])
	require.Len(t, notifier.events, 1)
	assert.Equal(t, ChangeAssignmentsCreated, notifier.events[0].Kind)
}

func TestCreateAssignmentsQualityGate(t *testing.T) {
	svc, store, _ := newTestFixture("")

	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-2",
		MachineIDs:  []string{"m-1"},
		Start:       time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed))
	assert.Empty(t, store.created)
}

func TestCreateAssignmentsRejectsBusyMachine(t *testing.T) {
	svc, store, _ := newTestFixture("")

	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-1",
		MachineIDs:  []string{"m-1", "m-3"},
		Start:       time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed))
	assert.Empty(t, store.created)
}

func TestCreateAssignmentsUnknownMachine(t *testing.T) {
	svc, store, _ := newTestFixture("")

	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-1",
		MachineIDs:  []string{"m-1", "m-404"},
		Start:       time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Empty(t, store.created)
}

func TestCreateAssignmentsDuplicateMachines(t *testing.T) {
	svc, _, _ := newTestFixture("")

	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-1",
		MachineIDs:  []string{"m-1", "m-1"},
		Start:       time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCreateAssignmentsMoreMachinesThanPieces(t *testing.T) {
	svc, store, _ := newTestFixture("")

	// One piece cannot occupy two machines; no row may be written with
	// a zero or negative quantity.
	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-4",
		MachineIDs:  []string{"m-1", "m-2"},
		Start:       time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	assert.Empty(t, store.created)
}

func TestCreateAssignmentsMissingCycleTime(t *testing.T) {
	svc, _, _ := newTestFixture("")

	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "pl-1", Role: models.RolePlanner}, CreateAssignmentsRequest{
		WorkOrderID: "wo-3",
		MachineIDs:  []string{"m-1"},
		Start:       time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCreateAssignmentsOverrideWritesAudit(t *testing.T) {
	svc, store, _ := newTestFixture("")
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	assignments, err := svc.CreateAssignments(context.Background(), Actor{ID: "sup-1", Role: models.RoleSupervisor}, CreateAssignmentsRequest{
		WorkOrderID:       "wo-1",
		MachineIDs:        []string{"m-1", "m-2"},
		Start:             start,
		OverrideCycleTime: cycleTime(6),
	})
	require.NoError(t, err)

	for _, assignment := range assignments {
		require.NotNil(t, assignment.OverrideCycleTime)
		require.NotNil(t, assignment.OverrideAppliedBy)
		require.NotNil(t, assignment.OverrideAppliedAt)
		require.NotNil(t, assignment.OriginalCycleTime)
		assert.Equal(t, 6.0, *assignment.OverrideCycleTime)
		assert.Equal(t, 12.0, *assignment.OriginalCycleTime)
		assert.Equal(t, "sup-1", *assignment.OverrideAppliedBy)
	}

	// 6 * 7 / 2 = 21s with the override in effect
	assert.Equal(t, start.Add(21*time.Second), assignments[0].ScheduledEnd)

	require.Len(t, store.audits, 1)
	audit := store.audits[0]
	require.NotNil(t, audit)
	assert.Equal(t, models.AuditActionCycleTimeOverride, audit.Action)
	assert.Equal(t, "sup-1", audit.Actor)

	var detail models.OverrideAuditDetail
	require.NoError(t, json.Unmarshal(audit.Detail, &detail))
	assert.Equal(t, 12.0, detail.OriginalCycleTime)
	assert.Equal(t, 6.0, detail.OverrideCycleTime)
	assert.Equal(t, 2, detail.MachineCount)
}

func TestCreateAssignmentsOverrideUnauthorized(t *testing.T) {
	svc, store, _ := newTestFixture("")

	_, err := svc.CreateAssignments(context.Background(), Actor{ID: "op-1", Role: models.RoleOperator}, CreateAssignmentsRequest{
		WorkOrderID:       "wo-1",
		MachineIDs:        []string{"m-1"},
		Start:             time.Now(),
		OverrideCycleTime: cycleTime(6),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
	assert.Empty(t, store.created)
}

func seedAssignment(store *assignmentStoreStub) *models.Assignment {
	start := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	assignment := &models.Assignment{
		ID:             "as-1",
		WorkOrderID:    "wo-1",
		MachineID:      "m-1",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(2 * time.Hour),
		Quantity:       4,
		Status:         models.AssignmentScheduled,
	}
	store.byID[assignment.ID] = assignment
	return assignment
}

func TestReassignSameMachineIsNoop(t *testing.T) {
	svc, store, notifier := newTestFixture("")
	seedAssignment(store)

	result, err := svc.Reassign(context.Background(), "as-1", "m-1")
	require.NoError(t, err)
	assert.False(t, result.Moved)
	assert.Equal(t, "m-1", result.Assignment.MachineID)
	assert.Empty(t, store.moveArgs)
	assert.Empty(t, notifier.events)

	// Second call with the same target stays a no-op.
	result, err = svc.Reassign(context.Background(), "as-1", "m-1")
	require.NoError(t, err)
	assert.False(t, result.Moved)
	assert.Empty(t, store.moveArgs)
}

func TestReassignPreservesWindowAndQuantity(t *testing.T) {
	svc, store, notifier := newTestFixture("")
	original := *seedAssignment(store)

	result, err := svc.Reassign(context.Background(), "as-1", "m-2")
	require.NoError(t, err)
	assert.True(t, result.Moved)
	assert.Equal(t, []string{"as-1:m-2"}, store.moveArgs)

	assert.Equal(t, "m-2", result.Assignment.MachineID)
	assert.Equal(t, original.ScheduledStart, result.Assignment.ScheduledStart)
	assert.Equal(t, original.ScheduledEnd, result.Assignment.ScheduledEnd)
	assert.Equal(t, original.Quantity, result.Assignment.Quantity)
	assert.Equal(t, original.Status, result.Assignment.Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, ChangeAssignmentMoved, notifier.events[0].Kind)
}

func TestReassignUnknownTargetMachine(t *testing.T) {
	svc, store, _ := newTestFixture("")
	seedAssignment(store)

	_, err := svc.Reassign(context.Background(), "as-1", "m-404")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Empty(t, store.moveArgs)
}

func TestReassignWarnPolicyReportsOverlaps(t *testing.T) {
	svc, store, _ := newTestFixture(config.OverlapWarn)
	seedAssignment(store)
	store.overlaps = []models.Assignment{{ID: "as-other", MachineID: "m-2"}}

	result, err := svc.Reassign(context.Background(), "as-1", "m-2")
	require.NoError(t, err)
	assert.True(t, result.Moved)
	require.Len(t, result.Overlaps, 1)
	assert.Equal(t, "as-other", result.Overlaps[0].ID)
}

func TestReassignForbidPolicyRejectsOverlap(t *testing.T) {
	svc, store, _ := newTestFixture(config.OverlapForbid)
	seedAssignment(store)
	store.overlaps = []models.Assignment{{ID: "as-other", MachineID: "m-2"}}

	_, err := svc.Reassign(context.Background(), "as-1", "m-2")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Empty(t, store.moveArgs)
}

func TestReassignPermitPolicySkipsOverlapCheck(t *testing.T) {
	svc, store, _ := newTestFixture(config.OverlapPermit)
	seedAssignment(store)

	result, err := svc.Reassign(context.Background(), "as-1", "m-2")
	require.NoError(t, err)
	assert.True(t, result.Moved)
	assert.Zero(t, store.overlapCalls)
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	svc, store, _ := newTestFixture("")
	seedAssignment(store)
	store.statusErr = repository.ErrIllegalTransition

	_, err := svc.UpdateStatus(context.Background(), "as-1", models.AssignmentCompleted)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	svc, _, _ := newTestFixture("")

	_, err := svc.UpdateStatus(context.Background(), "as-1", models.AssignmentStatus("archived"))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestUpdateStatusNotifies(t *testing.T) {
	svc, store, notifier := newTestFixture("")
	seedAssignment(store)

	assignment, err := svc.UpdateStatus(context.Background(), "as-1", models.AssignmentRunning)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentRunning, assignment.Status)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, ChangeAssignmentStatusSet, notifier.events[0].Kind)
}
