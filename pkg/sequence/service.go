package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vendahub/tenantcore/pkg/audit"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenantctx"
)

// DefaultMaxAttempts bounds the synchronous retry loop on counter conflicts
const DefaultMaxAttempts = 5

// Service is the sequence allocator. The only retry anywhere in this core is
// the bounded conflict loop here, and it is invisible to callers: they see one
// allocation or one retryable SEQUENCE_CONTENTION error, never a lost number.
type Service struct {
	repo         Repository
	auditService *audit.Service
	maxAttempts  int
}

// ServiceOption is a function that configures a Service
type ServiceOption func(*Service)

// WithMaxAttempts sets the conflict retry bound
func WithMaxAttempts(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewService creates a new sequence allocator service
func NewService(repo Repository, auditService *audit.Service, options ...ServiceOption) *Service {
	s := &Service{
		repo:         repo,
		auditService: auditService,
		maxAttempts:  DefaultMaxAttempts,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Next returns the next value for (tenantID, name). Values are unique,
// strictly increasing and gapless per key; a value is consumed only when it
// is returned to exactly one caller.
func (s *Service) Next(ctx context.Context, tenantID int64, name string) (int64, error) {
	if tenantID == 0 {
		return 0, tcerrors.New(tcerrors.ErrCodeInvalidInput, "tenant id is required")
	}
	if name == "" {
		return 0, tcerrors.New(tcerrors.ErrCodeInvalidInput, "sequence name is required")
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		value, err := s.repo.Increment(ctx, tenantID, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrCounterConflict) {
			return 0, fmt.Errorf("sequence allocation failed for tenant %d key %q: %w", tenantID, name, err)
		}
		lastErr = err
	}

	slog.Error("Sequence allocation exhausted retry bound",
		"tenant_id", tenantID, "sequence", name, "attempts", s.maxAttempts, "err", lastErr)

	// The allocating principal is the actor when the request carries a
	// resolved tenant context; internal callers fall back to the tenant id.
	actorID := tenantID
	if tc, ok := tenantctx.FromContext(ctx); ok {
		actorID = tc.PrincipalID
	}
	if err := s.auditService.Record(ctx, actorID, audit.ActionSequenceConflict, tenantID,
		fmt.Sprintf("sequence %q exhausted %d allocation attempts", name, s.maxAttempts)); err != nil {
		slog.Error("Failed to audit sequence conflict", "tenant_id", tenantID, "sequence", name, "err", err)
	}

	return 0, tcerrors.SequenceContention(tenantID, name)
}

// NextFiscal returns the next fiscal document number for the tenant's
// document type, series and environment. This is the entry point used by the
// fiscal-emission collaborator.
func (s *Service) NextFiscal(ctx context.Context, tenantID int64, docType DocumentType, series int, env Environment) (int64, error) {
	if !docType.Valid() {
		return 0, tcerrors.Newf(tcerrors.ErrCodeInvalidInput, "unknown document type: %q", docType)
	}
	if !env.Valid() {
		return 0, tcerrors.Newf(tcerrors.ErrCodeInvalidInput, "unknown environment: %q", env)
	}
	if series <= 0 {
		return 0, tcerrors.New(tcerrors.ErrCodeInvalidInput, "series must be positive")
	}
	return s.Next(ctx, tenantID, Key(docType, series, env))
}
