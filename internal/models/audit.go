package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionCycleTimeOverride = "cycle_time_override"
)

// AuditEntry is an immutable record of a scheduling parameter change.
type AuditEntry struct {
	ID          string    `db:"id" json:"id"`
	WorkOrderID string    `db:"work_order_id" json:"work_order_id"`
	Action      string    `db:"action" json:"action"`
	Actor       string    `db:"actor" json:"actor"`
	Detail      []byte    `db:"detail" json:"detail,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// OverrideAuditDetail is the structured payload stored for cycle-time
// override entries.
type OverrideAuditDetail struct {
	OriginalCycleTime float64 `json:"original_cycle_time"`
	OverrideCycleTime float64 `json:"override_cycle_time"`
	MachineCount      int     `json:"machine_count"`
}
