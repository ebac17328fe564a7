package tenant

import (
	"context"
	"errors"
)

// Common repository errors
var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrPrincipalNotFound = errors.New("principal not found")
)

// Repository defines the interface for tenant data access
type Repository interface {
	// Get a tenant by ID; soft-deleted tenants are not returned
	GetTenant(ctx context.Context, id int64) (Tenant, error)
}

// PrincipalRepository defines the interface for principal data access
type PrincipalRepository interface {
	// Get a principal by ID
	GetPrincipal(ctx context.Context, id int64) (Principal, error)

	// Get a principal by email
	GetPrincipalByEmail(ctx context.Context, email string) (Principal, error)

	// Find the first admin-role principal of a tenant, ordered by id
	// ascending for determinism
	FindFirstAdmin(ctx context.Context, tenantID int64) (Principal, error)
}
