package models

// UserRole represents the operator roles known to the console.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleSupervisor UserRole = "SUPERVISOR"
	RolePlanner    UserRole = "PLANNER"
	RoleOperator   UserRole = "OPERATOR"
)

// Capability is an abstract permission checked by the scheduling
// subsystem. Authorization policy is expressed in capabilities, not
// role names, so the role scheme can evolve independently.
type Capability string

const (
	CapabilitySchedule          Capability = "schedule"
	CapabilityOverrideCycleTime Capability = "override_cycle_time"
)

// roleCapabilities is the default role→capability policy. It is the
// pluggable default behind the capability predicate, not the predicate
// itself.
var roleCapabilities = map[UserRole][]Capability{
	RoleAdmin:      {CapabilitySchedule, CapabilityOverrideCycleTime},
	RoleSupervisor: {CapabilitySchedule, CapabilityOverrideCycleTime},
	RolePlanner:    {CapabilitySchedule},
	RoleOperator:   {},
}

// RoleHasCapability answers the default policy for a role.
func RoleHasCapability(role UserRole, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}
