package models

import "time"

// WorkOrder is the production order being scheduled. Owned by the
// order-management screens; read-only inside the scheduling subsystem.
type WorkOrder struct {
	ID               string     `db:"id" json:"id"`
	Number           string     `db:"number" json:"number"`
	CustomerName     string     `db:"customer_name" json:"customer_name"`
	Quantity         int        `db:"quantity" json:"quantity"`
	CycleTimeSeconds *float64   `db:"cycle_time_seconds" json:"cycle_time_seconds,omitempty"`
	MaterialQCPassed bool       `db:"material_qc_passed" json:"material_qc_passed"`
	DueDate          *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// HasDefaultCycleTime reports whether the order carries a usable
// default cycle time.
func (w *WorkOrder) HasDefaultCycleTime() bool {
	return w.CycleTimeSeconds != nil && *w.CycleTimeSeconds > 0
}
