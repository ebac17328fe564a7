package audit

import (
	"context"
	"sync"
)

// InMemoryRepository implements Repository using an ordered in-memory slice
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewInMemoryRepository creates a new in-memory audit repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Append stores one entry
func (r *InMemoryRepository) Append(ctx context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

// Query returns entries matching the filters, newest first
func (r *InMemoryRepository) Query(ctx context.Context, filters QueryFilters) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if filters.ActorID != 0 && e.ActorID != filters.ActorID {
			continue
		}
		if filters.TargetTenantID != 0 && e.TargetTenantID != filters.TargetTenantID {
			continue
		}
		if filters.Action != "" && e.Action != filters.Action {
			continue
		}
		matches = append(matches, e)
		if filters.Limit > 0 && len(matches) >= filters.Limit {
			break
		}
	}
	return matches, nil
}
