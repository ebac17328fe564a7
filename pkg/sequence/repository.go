package sequence

import (
	"context"
	"errors"
)

// ErrCounterConflict is returned by Increment when a compare-and-swap backend
// loses a race for the counter row. The allocation did not happen: no number
// was consumed, and the caller (the service retry loop) may try again.
var ErrCounterConflict = errors.New("sequence counter conflict")

// Repository defines the interface for sequence counter persistence
type Repository interface {
	// Increment atomically advances the counter for (tenantID, name) by one
	// and returns the new value, creating the counter at 1 when absent.
	//
	// Implementations must guarantee that two concurrent callers for the same
	// key never observe the same value, and that different keys never block
	// each other. Backends without an atomic upsert may return
	// ErrCounterConflict on a lost race.
	Increment(ctx context.Context, tenantID int64, name string) (int64, error)

	// Current returns the last allocated value for the key without advancing
	// it; zero when the counter does not exist yet
	Current(ctx context.Context, tenantID int64, name string) (int64, error)
}
