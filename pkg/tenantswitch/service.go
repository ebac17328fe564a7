package tenantswitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendahub/tenantcore/pkg/audit"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
)

// Service manages home/remote mode for master-admin sessions.
// Every state change is written to the audit log synchronously.
type Service struct {
	repo          Repository
	tenantService *tenant.Service
	auditService  *audit.Service
}

// NewService creates a new tenant-switch service
func NewService(repo Repository, tenantService *tenant.Service, auditService *audit.Service) *Service {
	return &Service{
		repo:          repo,
		tenantService: tenantService,
		auditService:  auditService,
	}
}

// Switch puts the session into remote mode on targetTenantID.
// Only master admins may switch; switching to the admin's own home tenant is
// treated as an implicit reset, not an error.
func (s *Service) Switch(ctx context.Context, sessionID string, admin tenant.Principal, targetTenantID int64) (Session, error) {
	if admin.Role != tenant.RoleMasterAdmin {
		return Session{}, tcerrors.Forbidden("only master admins may switch tenants")
	}
	if sessionID == "" {
		return Session{}, tcerrors.New(tcerrors.ErrCodeInvalidInput, "session id is required")
	}

	if targetTenantID == admin.TenantID {
		if err := s.Reset(ctx, sessionID, admin); err != nil {
			return Session{}, err
		}
		return Session{SessionID: sessionID, MasterAdminID: admin.ID}, nil
	}

	// Switching into a suspended tenant is allowed: maintenance access is a
	// read-only diagnostic concern and the resolver enforces write limits.
	if _, err := s.tenantService.CheckOperational(ctx, targetTenantID, true); err != nil {
		return Session{}, err
	}

	session := Session{
		SessionID:     sessionID,
		MasterAdminID: admin.ID,
		ActiveTenant:  &targetTenantID,
		EnteredAt:     time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, session); err != nil {
		return Session{}, fmt.Errorf("failed to store switch session: %w", err)
	}

	if err := s.auditService.Record(ctx, admin.ID, audit.ActionTenantSwitch, targetTenantID,
		fmt.Sprintf("master admin %d entered remote mode on tenant %d", admin.ID, targetTenantID)); err != nil {
		// Audit failure after the switch took effect: roll the state back so
		// no tenant switch exists without a durable audit trail.
		if clearErr := s.repo.Clear(ctx, sessionID); clearErr != nil {
			slog.Error("Failed to roll back switch session after audit failure", "err", clearErr)
		}
		return Session{}, tcerrors.Wrap(err, tcerrors.ErrCodeAuditWriteFailed, "failed to audit tenant switch")
	}

	return session, nil
}

// Reset returns the session to home mode and audits the transition.
// Resetting a session already in home mode is a no-op.
func (s *Service) Reset(ctx context.Context, sessionID string, admin tenant.Principal) error {
	existing, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load switch session: %w", err)
	}

	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear switch session: %w", err)
	}

	var target int64
	if existing.ActiveTenant != nil {
		target = *existing.ActiveTenant
	}
	if err := s.auditService.Record(ctx, admin.ID, audit.ActionTenantReset, target,
		fmt.Sprintf("master admin %d returned to home mode", admin.ID)); err != nil {
		return tcerrors.Wrap(err, tcerrors.ErrCodeAuditWriteFailed, "failed to audit tenant reset")
	}

	return nil
}

// Active returns the switch state for a client session, or nil when the
// session is in home mode
func (s *Service) Active(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load switch session: %w", err)
	}
	return &session, nil
}
