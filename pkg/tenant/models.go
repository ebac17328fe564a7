package tenant

import (
	"time"
)

// Status represents the lifecycle status of a tenant
type Status string

const (
	StatusActive    Status = "active"
	StatusTrial     Status = "trial"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// Operational reports whether the tenant may serve regular (non-diagnostic) requests
func (s Status) Operational() bool {
	return s == StatusActive || s == StatusTrial
}

// Tenant represents one isolated store organization sharing the system
type Tenant struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Status    Status     `json:"status"`
	PlanID    string     `json:"plan_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Role represents a principal's role, strictly ordered by privilege.
// Only master_admin may operate outside its home tenant.
type Role string

const (
	RoleMasterAdmin Role = "master_admin"
	RoleAdmin       Role = "admin"
	RoleVendedor    Role = "vendedor"
)

// rank orders roles by privilege; higher rank means more privilege
func (r Role) rank() int {
	switch r {
	case RoleMasterAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleVendedor:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r carries at least the privilege of other
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r.rank() > 0
}

// Principal represents an authenticated user.
// The home tenant id is assigned at creation and never mutated.
type Principal struct {
	ID           int64      `json:"id"`
	TenantID     int64      `json:"tenant_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
