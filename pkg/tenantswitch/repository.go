package tenantswitch

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when no switch state exists for a session id
var ErrSessionNotFound = errors.New("switch session not found")

// Repository defines the interface for switch-session state
type Repository interface {
	// Get the switch state for a client session
	Get(ctx context.Context, sessionID string) (Session, error)

	// Upsert stores or replaces the switch state for a client session
	Upsert(ctx context.Context, session Session) error

	// Clear removes the switch state for a client session (back to home mode).
	// Clearing an absent session is not an error.
	Clear(ctx context.Context, sessionID string) error
}
