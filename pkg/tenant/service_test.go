package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
)

func seedRepo(t *testing.T) *InMemoryRepository {
	t.Helper()
	repo := NewInMemoryRepository()
	now := time.Now().UTC()

	repo.AddTenant(Tenant{ID: 1, Name: "Plataforma", Status: StatusActive, CreatedAt: now})
	repo.AddTenant(Tenant{ID: 42, Name: "Loja 42", Status: StatusActive, CreatedAt: now})
	repo.AddTenant(Tenant{ID: 43, Name: "Loja 43", Status: StatusTrial, CreatedAt: now})
	repo.AddTenant(Tenant{ID: 44, Name: "Loja 44", Status: StatusSuspended, CreatedAt: now})
	repo.AddTenant(Tenant{ID: 45, Name: "Loja 45", Status: StatusCancelled, CreatedAt: now})

	repo.AddPrincipal(Principal{ID: 1, TenantID: 1, Email: "master@platform.test", Role: RoleMasterAdmin, CreatedAt: now})
	repo.AddPrincipal(Principal{ID: 120, TenantID: 42, Email: "second@loja42.test", Role: RoleAdmin, CreatedAt: now})
	repo.AddPrincipal(Principal{ID: 99, TenantID: 42, Email: "admin@loja42.test", Role: RoleAdmin, CreatedAt: now})
	repo.AddPrincipal(Principal{ID: 100, TenantID: 42, Email: "caixa@loja42.test", Role: RoleVendedor, CreatedAt: now})

	return repo
}

func TestCheckOperational(t *testing.T) {
	repo := seedRepo(t)
	service := NewService(repo, repo)
	ctx := context.Background()

	tests := []struct {
		name     string
		tenantID int64
		readOnly bool
		wantCode tcerrors.ErrorCode
	}{
		{"active tenant", 42, false, ""},
		{"trial tenant serves requests", 43, false, ""},
		{"suspended tenant rejected", 44, false, tcerrors.ErrCodeTenantSuspended},
		{"cancelled tenant rejected", 45, false, tcerrors.ErrCodeTenantSuspended},
		{"suspended tenant allows diagnostics", 44, true, ""},
		{"cancelled tenant allows diagnostics", 45, true, ""},
		{"unknown tenant", 9999, false, tcerrors.ErrCodeTenantNotFound},
		{"unknown tenant diagnostics", 9999, true, tcerrors.ErrCodeTenantNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn, err := service.CheckOperational(ctx, tt.tenantID, tt.readOnly)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.tenantID, tn.ID)
				return
			}
			require.Error(t, err)
			assert.True(t, tcerrors.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestGetTenantSoftDeleted(t *testing.T) {
	repo := seedRepo(t)
	service := NewService(repo, repo)
	ctx := context.Background()

	deleted := time.Now().UTC()
	repo.AddTenant(Tenant{ID: 50, Name: "Gone", Status: StatusActive, DeletedAt: &deleted})

	_, err := service.GetTenant(ctx, 50)
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeTenantNotFound), "got %v", err)
}

func TestFindFirstAdminPicksLowestID(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()

	// Tenant 42 has admins 99 and 120; the deterministic choice is the
	// lowest id regardless of insertion order.
	p, err := repo.FindFirstAdmin(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(99), p.ID)
}

func TestFindFirstAdminIgnoresOtherRoles(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.AddTenant(Tenant{ID: 60, Name: "Loja 60", Status: StatusActive})
	repo.AddPrincipal(Principal{ID: 200, TenantID: 60, Email: "caixa@loja60.test", Role: RoleVendedor})

	_, err := repo.FindFirstAdmin(context.Background(), 60)
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleMasterAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleMasterAdmin.AtLeast(RoleVendedor))
	assert.True(t, RoleAdmin.AtLeast(RoleVendedor))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleAdmin.AtLeast(RoleMasterAdmin))
	assert.False(t, RoleVendedor.AtLeast(RoleAdmin))

	assert.True(t, RoleVendedor.Valid())
	assert.False(t, Role("superuser").Valid())
}
