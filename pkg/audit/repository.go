package audit

import (
	"context"
)

// Repository defines the interface for audit log persistence.
// Implementations must be append-only: there is no update or delete.
type Repository interface {
	// Append durably stores one entry
	Append(ctx context.Context, entry Entry) error

	// Query returns entries matching the filters, newest first
	Query(ctx context.Context, filters QueryFilters) ([]Entry, error)
}
