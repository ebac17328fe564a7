package impersonate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vendahub/tenantcore/pkg/audit"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
	"github.com/vendahub/tenantcore/pkg/token"
)

// Service issues short-lived impersonation tokens that let a master admin
// act as a user of another tenant for support and maintenance.
type Service struct {
	tenantService *tenant.Service
	principalRepo tenant.PrincipalRepository
	generator     *token.Generator
	auditService  *audit.Service
	grantTTL      time.Duration
}

// ServiceOption is a function that configures a Service
type ServiceOption func(*Service)

// WithGrantTTL overrides the impersonation token lifetime
func WithGrantTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.grantTTL = ttl
		}
	}
}

// NewService creates a new impersonation service
func NewService(tenantService *tenant.Service, principalRepo tenant.PrincipalRepository,
	generator *token.Generator, auditService *audit.Service, options ...ServiceOption) *Service {
	s := &Service{
		tenantService: tenantService,
		principalRepo: principalRepo,
		generator:     generator,
		auditService:  auditService,
		grantTTL:      DefaultGrantTTL,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// RequestImpersonation issues an impersonation token for targetTenantID on
// behalf of masterAdmin. targetPrincipalID selects the tenant-side identity
// to assume; when nil, the tenant's first admin (lowest id) is used.
//
// The impersonate_grant audit entry is written synchronously BEFORE the token
// is returned; if the audit write fails the grant is aborted and no token
// exists. Expiry is enforced purely by the token's own signature and TTL —
// there is no server-side revocation store.
func (s *Service) RequestImpersonation(ctx context.Context, masterAdmin tenant.Principal,
	targetTenantID int64, targetPrincipalID *int64) (string, int, error) {
	// Role is enforced by the HTTP layer already; re-checked here as defense
	// in depth since a grant bypassing this check is a tenant-isolation hole.
	if masterAdmin.Role != tenant.RoleMasterAdmin {
		return "", 0, tcerrors.Forbidden("only master admins may impersonate")
	}

	target, err := s.tenantService.GetTenant(ctx, targetTenantID)
	if err != nil {
		return "", 0, err
	}
	if target.Status == tenant.StatusCancelled {
		return "", 0, tcerrors.TenantSuspended(target.ID, string(target.Status))
	}

	acting, err := s.resolveActingPrincipal(ctx, targetTenantID, targetPrincipalID)
	if err != nil {
		return "", 0, err
	}

	grant := Grant{
		ID:                uuid.New(),
		MasterAdminID:     masterAdmin.ID,
		TargetTenantID:    targetTenantID,
		ActingPrincipalID: acting.ID,
		IssuedAt:          time.Now().UTC(),
	}
	grant.ExpiresAt = grant.IssuedAt.Add(s.grantTTL)

	// Audit-before-effect: no token without a durable audit trail.
	if err := s.auditService.Record(ctx, masterAdmin.ID, audit.ActionImpersonateGrant, targetTenantID,
		fmt.Sprintf("grant %s: master admin %d acting as principal %d", grant.ID, masterAdmin.ID, acting.ID)); err != nil {
		return "", 0, tcerrors.Wrap(err, tcerrors.ErrCodeAuditWriteFailed, "failed to audit impersonation grant")
	}

	tokenStr, _, err := s.generator.IssueImpersonationToken(acting, masterAdmin.ID, grant.ID.String(), s.grantTTL)
	if err != nil {
		return "", 0, fmt.Errorf("failed to issue impersonation token: %w", err)
	}

	slog.Info("Impersonation granted",
		"grant_id", grant.ID,
		"master_admin_id", masterAdmin.ID,
		"target_tenant_id", targetTenantID,
		"acting_principal_id", acting.ID,
		"expires_in", int(s.grantTTL.Seconds()))

	return tokenStr, int(s.grantTTL.Seconds()), nil
}

func (s *Service) resolveActingPrincipal(ctx context.Context, targetTenantID int64, targetPrincipalID *int64) (tenant.Principal, error) {
	if targetPrincipalID != nil {
		p, err := s.principalRepo.GetPrincipal(ctx, *targetPrincipalID)
		if err != nil {
			if errors.Is(err, tenant.ErrPrincipalNotFound) {
				return tenant.Principal{}, tcerrors.NoActingPrincipal(targetTenantID)
			}
			return tenant.Principal{}, fmt.Errorf("failed to load target principal: %w", err)
		}
		if p.TenantID != targetTenantID {
			return tenant.Principal{}, tcerrors.Newf(tcerrors.ErrCodeInvalidInput,
				"principal %d does not belong to tenant %d", p.ID, targetTenantID)
		}
		return p, nil
	}

	p, err := s.principalRepo.FindFirstAdmin(ctx, targetTenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrPrincipalNotFound) {
			return tenant.Principal{}, tcerrors.NoActingPrincipal(targetTenantID)
		}
		return tenant.Principal{}, fmt.Errorf("failed to find acting principal: %w", err)
	}
	return p, nil
}

// IsImpersonation reports whether claims belong to an impersonation token.
// Used by downstream authorization and by UI "maintenance mode" banners.
func IsImpersonation(claims *token.Claims) bool {
	return claims != nil && claims.IsImpersonation()
}

// ImpersonatorOf returns the granting master admin's principal id, or false
// for ordinary tokens
func ImpersonatorOf(claims *token.Claims) (int64, bool) {
	if claims == nil || claims.Impersonation == nil {
		return 0, false
	}
	return claims.Impersonation.By, true
}
