package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service provides validated access to the audit log.
// It guarantees durable, ordered writes; it has no opinion on who may read
// the log, which is the caller's authorization concern.
type Service struct {
	repo Repository
}

// NewService creates a new audit service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Record builds and appends one entry, filling id and timestamp.
// Callers that require audit-before-effect ordering must call this
// synchronously and abort on error.
func (s *Service) Record(ctx context.Context, actorID int64, action Action, targetTenantID int64, detail string) error {
	entry := Entry{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		ActorID:        actorID,
		Action:         action,
		TargetTenantID: targetTenantID,
		Detail:         detail,
	}
	return s.Append(ctx, entry)
}

// Append validates and durably stores one entry
func (s *Service) Append(ctx context.Context, entry Entry) error {
	if !entry.Action.Valid() {
		return fmt.Errorf("invalid audit action: %q", entry.Action)
	}
	if entry.ActorID == 0 {
		return fmt.Errorf("actor_id is required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Query returns entries matching the filters, newest first
func (s *Service) Query(ctx context.Context, filters QueryFilters) ([]Entry, error) {
	return s.repo.Query(ctx, filters)
}
