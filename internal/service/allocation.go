package service

import (
	"time"

	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

// AllocationPlan is the result of splitting a work order's quantity
// across a set of machines sharing one run window.
type AllocationPlan struct {
	PerMachineQuantity int       `json:"per_machine_quantity"`
	RequiredSeconds    float64   `json:"required_seconds"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
}

// PlanAllocation computes the shared completion instant and the
// per-machine quantity for a work order run. Pure arithmetic: no
// clock, no randomness. End grows strictly with quantity and cycle
// time and shrinks strictly with machine count.
func PlanAllocation(quantity int, cycleSeconds float64, machineCount int, start time.Time) (AllocationPlan, error) {
	if quantity <= 0 {
		return AllocationPlan{}, appErrors.Clone(appErrors.ErrValidation, "quantity must be positive")
	}
	if machineCount < 1 {
		return AllocationPlan{}, appErrors.Clone(appErrors.ErrValidation, "at least one machine is required")
	}
	if machineCount > quantity {
		return AllocationPlan{}, appErrors.Clone(appErrors.ErrValidation, "more machines selected than pieces to produce")
	}
	if cycleSeconds <= 0 {
		return AllocationPlan{}, appErrors.Clone(appErrors.ErrValidation, "cycle time must be positive")
	}

	requiredSeconds := cycleSeconds * float64(quantity) / float64(machineCount)
	perMachine := (quantity + machineCount - 1) / machineCount

	return AllocationPlan{
		PerMachineQuantity: perMachine,
		RequiredSeconds:    requiredSeconds,
		Start:              start,
		End:                start.Add(time.Duration(requiredSeconds * float64(time.Second))),
	}, nil
}

// SplitQuantity distributes quantity over machineCount slots as evenly
// as possible: the first quantity%machineCount slots receive one extra
// piece. Shares differ by at most one, sum to quantity exactly, and
// are all positive whenever quantity >= machineCount (PlanAllocation
// rejects the opposite case before any split is taken).
func SplitQuantity(quantity, machineCount int) []int {
	base := quantity / machineCount
	extra := quantity % machineCount
	quantities := make([]int, machineCount)
	for i := range quantities {
		quantities[i] = base
		if i < extra {
			quantities[i]++
		}
	}
	return quantities
}
