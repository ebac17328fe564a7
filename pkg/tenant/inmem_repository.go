package tenant

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository implements Repository and PrincipalRepository using
// in-memory storage. Useful for development, demos and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	tenants    map[int64]Tenant
	principals map[int64]Principal
}

// NewInMemoryRepository creates a new in-memory tenant repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tenants:    make(map[int64]Tenant),
		principals: make(map[int64]Principal),
	}
}

// AddTenant stores a tenant (seed helper)
func (r *InMemoryRepository) AddTenant(t Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[t.ID] = t
}

// AddPrincipal stores a principal (seed helper)
func (r *InMemoryRepository) AddPrincipal(p Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.principals[p.ID] = p
}

// GetTenant retrieves a tenant by ID
func (r *InMemoryRepository) GetTenant(ctx context.Context, id int64) (Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants[id]
	if !ok || t.DeletedAt != nil {
		return Tenant{}, ErrTenantNotFound
	}
	return t, nil
}

// GetPrincipal retrieves a principal by ID
func (r *InMemoryRepository) GetPrincipal(ctx context.Context, id int64) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.principals[id]
	if !ok || p.DeletedAt != nil {
		return Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

// GetPrincipalByEmail retrieves a principal by email
func (r *InMemoryRepository) GetPrincipalByEmail(ctx context.Context, email string) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.principals {
		if p.DeletedAt != nil {
			continue
		}
		if p.Email == email {
			return p, nil
		}
	}
	return Principal{}, ErrPrincipalNotFound
}

// FindFirstAdmin finds the lowest-id admin principal of a tenant
func (r *InMemoryRepository) FindFirstAdmin(ctx context.Context, tenantID int64) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var admins []Principal
	for _, p := range r.principals {
		if p.DeletedAt != nil {
			continue
		}
		if p.TenantID == tenantID && p.Role == RoleAdmin {
			admins = append(admins, p)
		}
	}
	if len(admins) == 0 {
		return Principal{}, ErrPrincipalNotFound
	}

	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins[0], nil
}
