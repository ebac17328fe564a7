package impersonate

import (
	"time"

	"github.com/google/uuid"
)

// DefaultGrantTTL is the fixed lifetime of an impersonation token
const DefaultGrantTTL = time.Hour

// Grant records one instance of a master admin assuming a tenant's context.
// It is immutable once created and is "destroyed" only by token expiry; the
// grant itself is never stored as live server-side state — only the fact it
// was issued is durably recorded in the audit log. The grant id exists for
// audit and lookup, never for authorization.
type Grant struct {
	ID                uuid.UUID `json:"id"`
	MasterAdminID     int64     `json:"master_admin_id"`
	TargetTenantID    int64     `json:"target_tenant_id"`
	ActingPrincipalID int64     `json:"acting_principal_id"`
	IssuedAt          time.Time `json:"issued_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}
