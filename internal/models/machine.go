package models

import "time"

// MachineStatus represents machine availability on the shop floor.
type MachineStatus string

const (
	MachineIdle        MachineStatus = "idle"
	MachineRunning     MachineStatus = "running"
	MachineDown        MachineStatus = "down"
	MachineMaintenance MachineStatus = "maintenance"
)

// Machine is a production resource. Owned by the machine-park screens;
// read-only inside the scheduling subsystem.
type Machine struct {
	ID        string        `db:"id" json:"id"`
	Code      string        `db:"code" json:"code"`
	Name      string        `db:"name" json:"name"`
	Status    MachineStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Selectable reports whether the machine may receive a new assignment
// batch. Only idle machines are selectable.
func (m *Machine) Selectable() bool {
	return m.Status == MachineIdle
}

// MachineFilter describes query params for listing machines.
type MachineFilter struct {
	Status   string
	Page     int
	PageSize int
}
