package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
)

// ErrIllegalTransition is returned when a status update targets a
// state the current status may not move into.
var ErrIllegalTransition = errors.New("illegal assignment status transition")

// AssignmentRepository persists machine assignments.
type AssignmentRepository struct {
	db     *sqlx.DB
	audits *AuditRepository
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB, audits *AuditRepository) *AssignmentRepository {
	return &AssignmentRepository{db: db, audits: audits}
}

// CreateBatch inserts all assignment rows and the optional audit entry
// in one transaction. Any row failure rolls back the whole batch.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []*models.Assignment, audit *models.AuditEntry) error {
	if len(assignments) == 0 {
		return fmt.Errorf("create assignment batch: empty batch")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO machine_assignments
	(id, work_order_id, machine_id, scheduled_start, scheduled_end, quantity, status,
	 override_cycle_time, override_applied_by, override_applied_at, original_cycle_time,
	 created_at, updated_at)
	VALUES (:id, :work_order_id, :machine_id, :scheduled_start, :scheduled_end, :quantity, :status,
	 :override_cycle_time, :override_applied_by, :override_applied_at, :original_cycle_time,
	 :created_at, :updated_at)`

	now := time.Now().UTC()
	for _, assignment := range assignments {
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.Status == "" {
			assignment.Status = models.AssignmentScheduled
		}
		if assignment.CreatedAt.IsZero() {
			assignment.CreatedAt = now
		}
		assignment.UpdatedAt = assignment.CreatedAt
		if _, err := tx.NamedExecContext(ctx, query, assignment); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	if audit != nil {
		if err := r.audits.CreateTx(ctx, tx, audit); err != nil {
			return fmt.Errorf("insert batch audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment batch: %w", err)
	}
	return nil
}

const assignmentDetailColumns = `ma.id, ma.work_order_id, ma.machine_id, ma.scheduled_start, ma.scheduled_end,
       ma.quantity, ma.status, ma.override_cycle_time, ma.override_applied_by, ma.override_applied_at,
       ma.original_cycle_time, ma.created_at, ma.updated_at,
       m.code AS machine_code, wo.number AS work_order_number, wo.customer_name AS customer_name`

// ListByMachine returns assignments on a machine, optionally filtered
// by status, ordered by scheduled start.
func (r *AssignmentRepository) ListByMachine(ctx context.Context, machineID string, status models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	query := `
SELECT ` + assignmentDetailColumns + `
FROM machine_assignments ma
JOIN machines m ON m.id = ma.machine_id
JOIN work_orders wo ON wo.id = ma.work_order_id
WHERE ma.machine_id = $1`
	args := []interface{}{machineID}
	if status != "" {
		query += ` AND ma.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY ma.scheduled_start ASC`

	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments by machine: %w", err)
	}
	return assignments, nil
}

// ListByWorkOrder returns all assignments created for a work order.
func (r *AssignmentRepository) ListByWorkOrder(ctx context.Context, workOrderID string) ([]models.AssignmentDetail, error) {
	const query = `
SELECT ` + assignmentDetailColumns + `
FROM machine_assignments ma
JOIN machines m ON m.id = ma.machine_id
JOIN work_orders wo ON wo.id = ma.work_order_id
WHERE ma.work_order_id = $1
ORDER BY ma.scheduled_start ASC, m.code ASC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, workOrderID); err != nil {
		return nil, fmt.Errorf("list assignments by work order: %w", err)
	}
	return assignments, nil
}

// FindByID loads a single assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, work_order_id, machine_id, scheduled_start, scheduled_end, quantity, status,
       override_cycle_time, override_applied_by, override_applied_at, original_cycle_time,
       created_at, updated_at
FROM machine_assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// UpdateMachine moves an assignment to another machine. Start, end,
// quantity and status are deliberately untouched.
func (r *AssignmentRepository) UpdateMachine(ctx context.Context, assignmentID, newMachineID string) error {
	const query = `UPDATE machine_assignments SET machine_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, newMachineID, time.Now().UTC(), assignmentID)
	if err != nil {
		return fmt.Errorf("update assignment machine: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus applies a lifecycle transition. The transition table is
// enforced inside the UPDATE's WHERE clause so terminal states cannot
// be left under concurrency.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, assignmentID string, newStatus models.AssignmentStatus) error {
	sources := models.TransitionSources(newStatus)
	if len(sources) == 0 {
		return ErrIllegalTransition
	}
	allowed := make([]string, len(sources))
	for i, s := range sources {
		allowed[i] = string(s)
	}

	const query = `UPDATE machine_assignments SET status = $1, updated_at = $2 WHERE id = $3 AND status = ANY($4)`
	result, err := r.db.ExecContext(ctx, query, newStatus, time.Now().UTC(), assignmentID, pq.Array(allowed))
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		if _, err := r.FindByID(ctx, assignmentID); err != nil {
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}

// ListOverlapping returns non-terminal assignments on a machine whose
// run window intersects [start, end), excluding one assignment id.
func (r *AssignmentRepository) ListOverlapping(ctx context.Context, machineID string, start, end time.Time, excludeID string) ([]models.Assignment, error) {
	const query = `SELECT id, work_order_id, machine_id, scheduled_start, scheduled_end, quantity, status,
       override_cycle_time, override_applied_by, override_applied_at, original_cycle_time,
       created_at, updated_at
FROM machine_assignments
WHERE machine_id = $1
  AND id <> $2
  AND status NOT IN ('completed', 'cancelled')
  AND scheduled_start < $3
  AND scheduled_end > $4
ORDER BY scheduled_start ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, machineID, excludeID, end, start); err != nil {
		return nil, fmt.Errorf("list overlapping assignments: %w", err)
	}
	return assignments, nil
}
