package tenant

import (
	"context"
	"errors"
	"fmt"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
)

// Service provides tenant and principal lookups plus the tenant status rules
type Service struct {
	repo          Repository
	principalRepo PrincipalRepository
}

// NewService creates a new tenant service
func NewService(repo Repository, principalRepo PrincipalRepository) *Service {
	return &Service{
		repo:          repo,
		principalRepo: principalRepo,
	}
}

// GetTenant retrieves a tenant by ID, returning a typed TenantNotFound error
// when the tenant does not exist or is soft-deleted
func (s *Service) GetTenant(ctx context.Context, id int64) (Tenant, error) {
	t, err := s.repo.GetTenant(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return Tenant{}, tcerrors.TenantNotFound(id)
		}
		return Tenant{}, fmt.Errorf("failed to get tenant %d: %w", id, err)
	}
	return t, nil
}

// CheckOperational verifies a tenant exists and may serve the request.
// Suspended and cancelled tenants are only allowed read-only diagnostic calls.
func (s *Service) CheckOperational(ctx context.Context, id int64, readOnlyDiagnostic bool) (Tenant, error) {
	t, err := s.GetTenant(ctx, id)
	if err != nil {
		return Tenant{}, err
	}
	if !t.Status.Operational() && !readOnlyDiagnostic {
		return Tenant{}, tcerrors.TenantSuspended(t.ID, string(t.Status))
	}
	return t, nil
}

// GetPrincipal retrieves a principal by ID
func (s *Service) GetPrincipal(ctx context.Context, id int64) (Principal, error) {
	p, err := s.principalRepo.GetPrincipal(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return Principal{}, tcerrors.Newf(tcerrors.ErrCodeNotFound, "principal not found: %d", id)
		}
		return Principal{}, fmt.Errorf("failed to get principal %d: %w", id, err)
	}
	return p, nil
}
