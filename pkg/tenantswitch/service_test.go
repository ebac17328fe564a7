package tenantswitch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendahub/tenantcore/pkg/audit"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
)

func newTestService(t *testing.T) (*Service, *InMemoryRepository, *audit.InMemoryRepository, tenant.Principal) {
	t.Helper()
	repo := tenant.NewInMemoryRepository()
	now := time.Now().UTC()

	repo.AddTenant(tenant.Tenant{ID: 1, Name: "Plataforma", Status: tenant.StatusActive, CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 42, Name: "Loja 42", Status: tenant.StatusActive, CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 43, Name: "Loja 43", Status: tenant.StatusActive, CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 44, Name: "Loja 44", Status: tenant.StatusSuspended, CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 45, Name: "Loja 45", Status: tenant.StatusCancelled, CreatedAt: now})

	master := tenant.Principal{ID: 1, TenantID: 1, Email: "master@platform.test", Role: tenant.RoleMasterAdmin, CreatedAt: now}
	repo.AddPrincipal(master)

	switchRepo := NewInMemoryRepository()
	auditRepo := audit.NewInMemoryRepository()
	service := NewService(switchRepo, tenant.NewService(repo, repo), audit.NewService(auditRepo))
	return service, switchRepo, auditRepo, master
}

func TestSwitchAndActive(t *testing.T) {
	service, _, auditRepo, master := newTestService(t)
	ctx := context.Background()

	session, err := service.Switch(ctx, "session-a", master, 42)
	require.NoError(t, err)
	require.NotNil(t, session.ActiveTenant)
	assert.Equal(t, int64(42), *session.ActiveTenant)
	assert.True(t, session.Remote())

	active, err := service.Active(ctx, "session-a")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(42), *active.ActiveTenant)

	entries, err := auditRepo.Query(ctx, audit.QueryFilters{Action: audit.ActionTenantSwitch})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, master.ID, entries[0].ActorID)
	assert.Equal(t, int64(42), entries[0].TargetTenantID)
}

func TestSwitchOverwritesPreviousTarget(t *testing.T) {
	service, _, _, master := newTestService(t)
	ctx := context.Background()

	_, err := service.Switch(ctx, "session-a", master, 42)
	require.NoError(t, err)
	_, err = service.Switch(ctx, "session-a", master, 43)
	require.NoError(t, err)

	active, err := service.Active(ctx, "session-a")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(43), *active.ActiveTenant)
}

func TestSwitchSessionsIndependent(t *testing.T) {
	service, _, _, master := newTestService(t)
	ctx := context.Background()

	// The same master admin on two devices: each client session holds its
	// own switch state.
	_, err := service.Switch(ctx, "session-a", master, 42)
	require.NoError(t, err)
	_, err = service.Switch(ctx, "session-b", master, 43)
	require.NoError(t, err)

	a, err := service.Active(ctx, "session-a")
	require.NoError(t, err)
	b, err := service.Active(ctx, "session-b")
	require.NoError(t, err)
	assert.Equal(t, int64(42), *a.ActiveTenant)
	assert.Equal(t, int64(43), *b.ActiveTenant)

	require.NoError(t, service.Reset(ctx, "session-a", master))

	a, err = service.Active(ctx, "session-a")
	require.NoError(t, err)
	assert.Nil(t, a)
	b, err = service.Active(ctx, "session-b")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, int64(43), *b.ActiveTenant)
}

func TestSwitchToHomeTenantIsReset(t *testing.T) {
	service, _, auditRepo, master := newTestService(t)
	ctx := context.Background()

	_, err := service.Switch(ctx, "session-a", master, 42)
	require.NoError(t, err)

	session, err := service.Switch(ctx, "session-a", master, master.TenantID)
	require.NoError(t, err)
	assert.False(t, session.Remote())

	active, err := service.Active(ctx, "session-a")
	require.NoError(t, err)
	assert.Nil(t, active)

	entries, err := auditRepo.Query(ctx, audit.QueryFilters{Action: audit.ActionTenantReset})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResetNoopWhenHome(t *testing.T) {
	service, _, auditRepo, master := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.Reset(ctx, "session-a", master))

	entries, err := auditRepo.Query(ctx, audit.QueryFilters{})
	require.NoError(t, err)
	assert.Empty(t, entries, "resetting a home-mode session writes no audit entry")
}

func TestSwitchNonMasterForbidden(t *testing.T) {
	service, _, _, _ := newTestService(t)
	admin := tenant.Principal{ID: 99, TenantID: 42, Role: tenant.RoleAdmin}

	_, err := service.Switch(context.Background(), "session-a", admin, 43)
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeForbidden), "got %v", err)
}

func TestSwitchTenantStates(t *testing.T) {
	service, _, _, master := newTestService(t)
	ctx := context.Background()

	// Suspended tenants accept a maintenance switch; nonexistent ones don't.
	_, err := service.Switch(ctx, "session-a", master, 44)
	assert.NoError(t, err)

	_, err = service.Switch(ctx, "session-b", master, 9999)
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeTenantNotFound), "got %v", err)
}

// failingAuditRepository refuses every write.
type failingAuditRepository struct{}

func (failingAuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	return errors.New("audit store down")
}

func (failingAuditRepository) Query(ctx context.Context, filters audit.QueryFilters) ([]audit.Entry, error) {
	return nil, nil
}

func TestSwitchRolledBackOnAuditFailure(t *testing.T) {
	repo := tenant.NewInMemoryRepository()
	repo.AddTenant(tenant.Tenant{ID: 1, Status: tenant.StatusActive})
	repo.AddTenant(tenant.Tenant{ID: 42, Status: tenant.StatusActive})
	master := tenant.Principal{ID: 1, TenantID: 1, Role: tenant.RoleMasterAdmin}

	service := NewService(NewInMemoryRepository(), tenant.NewService(repo, repo), audit.NewService(failingAuditRepository{}))
	ctx := context.Background()

	_, err := service.Switch(ctx, "session-a", master, 42)
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeAuditWriteFailed), "got %v", err)

	active, err := service.Active(ctx, "session-a")
	require.NoError(t, err)
	assert.Nil(t, active, "no switch may persist without an audit trail")
}
