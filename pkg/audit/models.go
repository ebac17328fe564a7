// Package audit provides the append-only audit log for tenantcore.
// Every impersonation grant, tenant switch and sequence allocation failure
// is recorded here. Entries are immutable: the public contract has no
// update or delete operation.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what kind of state change an entry records
type Action string

const (
	ActionImpersonateGrant  Action = "impersonate_grant"
	ActionImpersonateExpire Action = "impersonate_expire"
	ActionTenantSwitch      Action = "tenant_switch"
	ActionTenantReset       Action = "tenant_reset"
	ActionSequenceConflict  Action = "sequence_conflict"
)

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	switch a {
	case ActionImpersonateGrant, ActionImpersonateExpire,
		ActionTenantSwitch, ActionTenantReset, ActionSequenceConflict:
		return true
	}
	return false
}

// Entry is one immutable audit record
type Entry struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ActorID        int64     `json:"actor_id"`
	Action         Action    `json:"action"`
	TargetTenantID int64     `json:"target_tenant_id"`
	Detail         string    `json:"detail,omitempty"`
}

// QueryFilters narrows a Query call. Zero values mean "any".
type QueryFilters struct {
	ActorID        int64
	TargetTenantID int64
	Action         Action
	Limit          int
}
