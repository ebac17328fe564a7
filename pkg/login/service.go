package login

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
	"github.com/vendahub/tenantcore/pkg/token"
)

// Result carries a freshly issued IdentityToken
type Result struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
}

// Service authenticates principals and issues IdentityTokens. Each login
// creates a fresh session id, which is what switch-session state is keyed by.
type Service struct {
	principalRepo tenant.PrincipalRepository
	generator     *token.Generator
}

// NewService creates a new login service
func NewService(principalRepo tenant.PrincipalRepository, generator *token.Generator) *Service {
	return &Service{
		principalRepo: principalRepo,
		generator:     generator,
	}
}

// Login verifies credentials and issues an IdentityToken for the principal's
// home tenant. The same generic unauthorized error is returned for unknown
// emails and wrong passwords.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	p, err := s.principalRepo.GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, tenant.ErrPrincipalNotFound) {
			return Result{}, tcerrors.Unauthorized("invalid credentials")
		}
		return Result{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		slog.Warn("Failed login attempt", "principal_id", p.ID)
		return Result{}, tcerrors.Unauthorized("invalid credentials")
	}

	sessionID := uuid.New().String()
	tokenStr, expiresAt, err := s.generator.IssueIdentityToken(p, sessionID)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Token:     tokenStr,
		ExpiresAt: expiresAt,
		SessionID: sessionID,
	}, nil
}

// HashPassword hashes a plaintext password for storage (seed and admin tooling)
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
