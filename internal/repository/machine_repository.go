package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
)

// MachineRepository reads the machine park. Rows are owned by the
// machine administration screens; read-only here.
type MachineRepository struct {
	db *sqlx.DB
}

// NewMachineRepository constructs the repository.
func NewMachineRepository(db *sqlx.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// FindByID loads a single machine.
func (r *MachineRepository) FindByID(ctx context.Context, id string) (*models.Machine, error) {
	const query = `SELECT id, code, name, status, created_at FROM machines WHERE id = $1`
	var machine models.Machine
	if err := r.db.GetContext(ctx, &machine, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find machine: %w", err)
	}
	return &machine, nil
}

// FindByIDs loads a set of machines in one round trip. Missing ids are
// simply absent from the result.
func (r *MachineRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Machine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, code, name, status, created_at FROM machines WHERE id = ANY($1) ORDER BY code ASC`
	var machines []models.Machine
	if err := r.db.SelectContext(ctx, &machines, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find machines: %w", err)
	}
	return machines, nil
}

// List returns machines with optional status filtering and paging.
func (r *MachineRepository) List(ctx context.Context, filter models.MachineFilter) ([]models.Machine, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Status != "" {
		where = ` WHERE status = $1`
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM machines`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count machines: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	query := `SELECT id, code, name, status, created_at FROM machines` + where +
		fmt.Sprintf(` ORDER BY code ASC LIMIT %d OFFSET %d`, pageSize, (page-1)*pageSize)

	var machines []models.Machine
	if err := r.db.SelectContext(ctx, &machines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list machines: %w", err)
	}
	return machines, total, nil
}
