package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
)

// AuditRepository appends and reads scheduling audit entries.
// Entries are immutable once written.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditInsertQuery = `INSERT INTO audit_entries (id, work_order_id, action, actor, detail, created_at)
	VALUES (:id, :work_order_id, :action, :actor, :detail, :created_at)`

// Create appends an entry outside any transaction.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	prepareAuditEntry(entry)
	if _, err := r.db.NamedExecContext(ctx, auditInsertQuery, entry); err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// CreateTx appends an entry inside the caller's transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, entry *models.AuditEntry) error {
	prepareAuditEntry(entry)
	if _, err := tx.NamedExecContext(ctx, auditInsertQuery, entry); err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// ListByWorkOrder returns the audit trail for a work order, newest first.
func (r *AuditRepository) ListByWorkOrder(ctx context.Context, workOrderID string) ([]models.AuditEntry, error) {
	const query = `SELECT id, work_order_id, action, actor, detail, created_at
FROM audit_entries
WHERE work_order_id = $1
ORDER BY created_at DESC`
	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, workOrderID); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func prepareAuditEntry(entry *models.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}
