package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
)

// WorkOrderRepository reads production work orders. The rows are owned
// by the order-management screens; the scheduling subsystem never
// writes them.
type WorkOrderRepository struct {
	db *sqlx.DB
}

// NewWorkOrderRepository constructs the repository.
func NewWorkOrderRepository(db *sqlx.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// FindByID loads a single work order.
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	const query = `SELECT id, number, customer_name, quantity, cycle_time_seconds, material_qc_passed, due_date, created_at
FROM work_orders WHERE id = $1`
	var order models.WorkOrder
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find work order: %w", err)
	}
	return &order, nil
}
