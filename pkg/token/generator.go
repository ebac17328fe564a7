package token

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
)

// Default token expiry durations
const (
	DefaultIdentityTokenExpiry      = 15 * time.Minute
	DefaultImpersonationTokenExpiry = time.Hour
)

// Generator issues and parses signed IdentityTokens.
// Tokens are immutable: to change claims a new token is issued and the old
// one is left to expire naturally.
type Generator struct {
	Secret   string
	Issuer   string
	Audience string

	// Configurable token expiry durations
	IdentityTokenExpiry      time.Duration
	ImpersonationTokenExpiry time.Duration
}

// Option is a function that configures a Generator
type Option func(*Generator)

// WithIdentityTokenExpiry sets the identity token expiry duration
func WithIdentityTokenExpiry(expiry time.Duration) Option {
	return func(g *Generator) {
		g.IdentityTokenExpiry = expiry
	}
}

// WithImpersonationTokenExpiry sets the impersonation token expiry duration
func WithImpersonationTokenExpiry(expiry time.Duration) Option {
	return func(g *Generator) {
		g.ImpersonationTokenExpiry = expiry
	}
}

// NewGenerator creates a new token Generator
func NewGenerator(secret, issuer, audience string, options ...Option) *Generator {
	g := &Generator{
		Secret:                   secret,
		Issuer:                   issuer,
		Audience:                 audience,
		IdentityTokenExpiry:      DefaultIdentityTokenExpiry,
		ImpersonationTokenExpiry: DefaultImpersonationTokenExpiry,
	}

	for _, option := range options {
		option(g)
	}

	return g
}

func (g *Generator) registeredClaims(subject string, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
		Issuer:    g.Issuer,
		Subject:   subject,
		ID:        uuid.New().String(),
		Audience:  jwt.ClaimStrings{g.Audience},
	}
}

func (g *Generator) sign(claims Claims) (string, time.Time, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed sign JWT claim string", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// IssueIdentityToken creates a token carrying the principal's own identity
// and home tenant. sessionID ties the token to one client session so tenant
// switches on one device never affect another.
func (g *Generator) IssueIdentityToken(p tenant.Principal, sessionID string) (string, time.Time, error) {
	claims := Claims{
		TenantID:         p.TenantID,
		Role:             p.Role,
		SessionID:        sessionID,
		RegisteredClaims: g.registeredClaims(strconv.FormatInt(p.ID, 10), g.IdentityTokenExpiry),
	}
	return g.sign(claims)
}

// IssueImpersonationToken creates a token carrying the acting principal's
// identity within the target tenant, marked with the granting master admin.
// ttl drives the token's exp so the expiry reported to the caller and the
// one inside the token can never drift apart; ttl <= 0 falls back to the
// generator's configured impersonation expiry.
func (g *Generator) IssueImpersonationToken(acting tenant.Principal, masterAdminID int64, grantID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = g.ImpersonationTokenExpiry
	}
	claims := Claims{
		TenantID:  acting.TenantID,
		Role:      acting.Role,
		SessionID: uuid.New().String(),
		Impersonation: &Impersonation{
			By:      masterAdminID,
			GrantID: grantID,
		},
		RegisteredClaims: g.registeredClaims(strconv.FormatInt(acting.ID, 10), ttl),
	}
	return g.sign(claims)
}

// ParseToken parses and validates a token string, returning typed errors:
// TOKEN_EXPIRED for tokens past their expiry and TOKEN_INVALID_SIGNATURE for
// tampered or foreign tokens.
func (g *Generator) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(g.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, tcerrors.Wrap(err, tcerrors.ErrCodeTokenExpired, "token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, tcerrors.Wrap(err, tcerrors.ErrCodeTokenInvalidSignature, "token signature invalid")
		default:
			return nil, tcerrors.Wrap(err, tcerrors.ErrCodeTokenInvalid, "failed to parse token")
		}
	}
	if !token.Valid {
		return nil, tcerrors.New(tcerrors.ErrCodeTokenInvalid, "token invalid")
	}
	return claims, nil
}

// ParseClaimsMap builds Claims from a raw claims map as produced by the
// jwtauth middleware. Used by pkg/client where the token has already been
// verified at the router layer.
func ParseClaimsMap(m map[string]interface{}) (*Claims, error) {
	claims := &Claims{}

	if sub, ok := m["sub"].(string); ok {
		claims.Subject = sub
	}
	switch v := m["tenant_id"].(type) {
	case float64:
		claims.TenantID = int64(v)
	case int64:
		claims.TenantID = v
	}
	if role, ok := m["role"].(string); ok {
		claims.Role = tenant.Role(role)
	}
	if sid, ok := m["session_id"].(string); ok {
		claims.SessionID = sid
	}
	if imp, ok := m["impersonation"].(map[string]interface{}); ok {
		block := &Impersonation{}
		switch v := imp["by"].(type) {
		case float64:
			block.By = int64(v)
		case int64:
			block.By = v
		}
		if gid, ok := imp["grant_id"].(string); ok {
			block.GrantID = gid
		}
		claims.Impersonation = block
	}
	if exp, ok := m["exp"].(time.Time); ok {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	} else if exp, ok := m["exp"].(float64); ok {
		claims.ExpiresAt = jwt.NewNumericDate(time.Unix(int64(exp), 0))
	}

	if claims.Subject == "" {
		return nil, tcerrors.New(tcerrors.ErrCodeTokenInvalid, "token missing subject")
	}
	if !claims.Role.Valid() {
		return nil, tcerrors.New(tcerrors.ErrCodeTokenInvalid, "token missing role")
	}
	return claims, nil
}
