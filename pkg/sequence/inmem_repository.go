package sequence

import (
	"context"
	"sync"
)

type counterKey struct {
	tenantID int64
	name     string
}

// InMemoryRepository implements Repository with per-key mutexes so that
// concurrent allocations on different keys never block each other.
type InMemoryRepository struct {
	mu       sync.RWMutex // guards the maps, not the counters
	counters map[counterKey]*counterCell
}

type counterCell struct {
	mu    sync.Mutex
	value int64
}

// NewInMemoryRepository creates a new in-memory sequence repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		counters: make(map[counterKey]*counterCell),
	}
}

func (r *InMemoryRepository) cell(tenantID int64, name string) *counterCell {
	key := counterKey{tenantID: tenantID, name: name}

	r.mu.RLock()
	c, ok := r.counters[key]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[key]; ok {
		return c
	}
	c = &counterCell{}
	r.counters[key] = c
	return c
}

// Increment atomically advances the counter and returns the new value
func (r *InMemoryRepository) Increment(ctx context.Context, tenantID int64, name string) (int64, error) {
	c := r.cell(tenantID, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value, nil
}

// Current returns the last allocated value without advancing it
func (r *InMemoryRepository) Current(ctx context.Context, tenantID int64, name string) (int64, error) {
	c := r.cell(tenantID, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}
