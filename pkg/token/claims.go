package token

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vendahub/tenantcore/pkg/tenant"
)

// Impersonation marks a token issued by the impersonation service on behalf
// of a master admin. It is audit/display metadata only and is never used for
// authorization decisions.
type Impersonation struct {
	By      int64  `json:"by"`
	GrantID string `json:"grant_id"`
}

// Claims is the claim set carried by every IdentityToken.
// Subject holds the principal id; TenantID is the principal's home tenant
// (or the assumed tenant on impersonation tokens).
type Claims struct {
	TenantID      int64          `json:"tenant_id"`
	Role          tenant.Role    `json:"role"`
	SessionID     string         `json:"session_id,omitempty"`
	Impersonation *Impersonation `json:"impersonation,omitempty"`
	jwt.RegisteredClaims
}

// PrincipalID parses the subject claim as a principal id
func (c *Claims) PrincipalID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// IsImpersonation reports whether the token was issued by the impersonation service
func (c *Claims) IsImpersonation() bool {
	return c.Impersonation != nil
}
