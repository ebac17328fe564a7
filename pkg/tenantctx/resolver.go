package tenantctx

import (
	"context"
	"log/slog"
	"time"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
	"github.com/vendahub/tenantcore/pkg/token"
	"github.com/vendahub/tenantcore/pkg/tenantswitch"
)

// Resolver derives the effective tenant id and role for a request from a
// verified IdentityToken plus the caller's switch-session state.
//
// Resolution is a pure function over its inputs aside from the tenant
// existence lookup; callers must re-resolve on every request and never cache
// a TenantContext across requests.
type Resolver struct {
	tenantService *tenant.Service
}

// NewResolver creates a new Resolver
func NewResolver(tenantService *tenant.Service) *Resolver {
	return &Resolver{
		tenantService: tenantService,
	}
}

// Resolve computes the effective tenant context for a regular request
func (r *Resolver) Resolve(ctx context.Context, claims *token.Claims, sw *tenantswitch.Session) (TenantContext, error) {
	return r.resolve(ctx, claims, sw, false)
}

// ResolveDiagnostic computes the effective tenant context for a read-only
// diagnostic call; suspended and cancelled tenants are allowed here.
func (r *Resolver) ResolveDiagnostic(ctx context.Context, claims *token.Claims, sw *tenantswitch.Session) (TenantContext, error) {
	return r.resolve(ctx, claims, sw, true)
}

func (r *Resolver) resolve(ctx context.Context, claims *token.Claims, sw *tenantswitch.Session, readOnlyDiagnostic bool) (TenantContext, error) {
	if claims == nil {
		return TenantContext{}, tcerrors.Unauthorized("missing identity token")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return TenantContext{}, tcerrors.New(tcerrors.ErrCodeTokenExpired, "token expired")
	}

	principalID, err := claims.PrincipalID()
	if err != nil {
		return TenantContext{}, tcerrors.Wrap(err, tcerrors.ErrCodeTokenInvalid, "invalid token subject")
	}
	if !claims.Role.Valid() {
		return TenantContext{}, tcerrors.New(tcerrors.ErrCodeTokenInvalid, "unknown role in token")
	}

	tc := TenantContext{
		TenantID:     claims.TenantID,
		Role:         claims.Role,
		PrincipalID:  principalID,
		Impersonated: claims.IsImpersonation(),
	}

	if claims.Role != tenant.RoleMasterAdmin {
		// Non-master roles always resolve to their home tenant. A switch
		// session for such a principal is anomalous: only master admins may
		// legitimately hold one. Logged, not fatal.
		if sw != nil {
			slog.Warn("Ignoring switch session for non-master principal",
				"principal_id", principalID, "role", claims.Role)
		}
	} else if sw.Remote() {
		// Remote mode: the effective role inside the target tenant is the
		// tenant-local admin role, never master_admin, so no master privilege
		// leaks into the target tenant's authorization checks.
		tc.TenantID = *sw.ActiveTenant
		tc.Role = tenant.RoleAdmin
		tc.RemoteMode = true
	}

	if _, err := r.tenantService.CheckOperational(ctx, tc.TenantID, readOnlyDiagnostic); err != nil {
		return TenantContext{}, err
	}

	return tc, nil
}
