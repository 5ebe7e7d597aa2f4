package models

import "time"

// AssignmentStatus is the lifecycle state of a machine assignment.
type AssignmentStatus string

const (
	AssignmentScheduled AssignmentStatus = "scheduled"
	AssignmentRunning   AssignmentStatus = "running"
	AssignmentPaused    AssignmentStatus = "paused"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// assignmentTransitions lists the allowed outgoing transitions per
// state. Terminal states have no entries.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentScheduled: {AssignmentRunning, AssignmentCancelled},
	AssignmentRunning:   {AssignmentPaused, AssignmentCompleted, AssignmentCancelled},
	AssignmentPaused:    {AssignmentRunning, AssignmentCancelled},
}

// ValidStatus reports whether s names a known assignment status.
func ValidStatus(s AssignmentStatus) bool {
	switch s {
	case AssignmentScheduled, AssignmentRunning, AssignmentPaused, AssignmentCompleted, AssignmentCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from→to is an allowed lifecycle move.
func CanTransition(from, to AssignmentStatus) bool {
	for _, next := range assignmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every state that may move into the target
// status. Used to build race-free UPDATE guards.
func TransitionSources(to AssignmentStatus) []AssignmentStatus {
	var sources []AssignmentStatus
	for from, nexts := range assignmentTransitions {
		for _, next := range nexts {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// Assignment allocates part of a work order's quantity to one machine
// over a scheduled run window.
type Assignment struct {
	ID             string           `db:"id" json:"id"`
	WorkOrderID    string           `db:"work_order_id" json:"work_order_id"`
	MachineID      string           `db:"machine_id" json:"machine_id"`
	ScheduledStart time.Time        `db:"scheduled_start" json:"scheduled_start"`
	ScheduledEnd   time.Time        `db:"scheduled_end" json:"scheduled_end"`
	Quantity       int              `db:"quantity" json:"quantity"`
	Status         AssignmentStatus `db:"status" json:"status"`

	// Override fields are populated together or not at all; a
	// populated triple implies a matching audit entry.
	OverrideCycleTime *float64   `db:"override_cycle_time" json:"override_cycle_time,omitempty"`
	OverrideAppliedBy *string    `db:"override_applied_by" json:"override_applied_by,omitempty"`
	OverrideAppliedAt *time.Time `db:"override_applied_at" json:"override_applied_at,omitempty"`
	OriginalCycleTime *float64   `db:"original_cycle_time" json:"original_cycle_time,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Overridden reports whether the assignment carries a cycle-time
// override.
func (a *Assignment) Overridden() bool {
	return a.OverrideCycleTime != nil
}

// AssignmentDetail enriches assignments with descriptive fields for
// list views.
type AssignmentDetail struct {
	Assignment
	MachineCode     string `db:"machine_code" json:"machine_code"`
	WorkOrderNumber string `db:"work_order_number" json:"work_order_number"`
	CustomerName    string `db:"customer_name" json:"customer_name"`
}

// CycleTimeOverride describes an authorized deviation from the work
// order's default cycle time. Produced by the override authority,
// persisted by the assignment workflow.
type CycleTimeOverride struct {
	OriginalSeconds float64   `json:"original_seconds"`
	NewSeconds      float64   `json:"new_seconds"`
	AppliedBy       string    `json:"applied_by"`
	AppliedAt       time.Time `json:"applied_at"`
}

// EffectiveCycleTime is the cycle time a scheduling computation will
// actually use, plus the override descriptor when one was authorized.
type EffectiveCycleTime struct {
	Seconds  float64
	Override *CycleTimeOverride
}
