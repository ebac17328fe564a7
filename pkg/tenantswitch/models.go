package tenantswitch

import (
	"time"
)

// Session tracks, per client session of a master admin, whether they are in
// "home" mode or "maintenance/remote" mode and which tenant is active.
//
// State is keyed by the client session id rather than the principal id so a
// switch on one device never silently changes another device's context.
type Session struct {
	SessionID     string    `json:"session_id"`
	MasterAdminID int64     `json:"master_admin_id"`
	ActiveTenant  *int64    `json:"active_tenant_id,omitempty"` // nil means home mode
	EnteredAt     time.Time `json:"entered_at"`
}

// Remote reports whether the session is in maintenance/remote mode
func (s *Session) Remote() bool {
	return s != nil && s.ActiveTenant != nil
}
