package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
)

func testPrincipal() tenant.Principal {
	return tenant.Principal{
		ID:       99,
		TenantID: 42,
		Email:    "admin@loja42.test",
		Role:     tenant.RoleAdmin,
	}
}

func TestIdentityTokenRoundTrip(t *testing.T) {
	g := NewGenerator("test-secret", "tenantcore-test", "tenantcore-test")

	tokenStr, expiresAt, err := g.IssueIdentityToken(testPrincipal(), "session-abc")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(DefaultIdentityTokenExpiry), expiresAt, 5*time.Second)

	claims, err := g.ParseToken(tokenStr)
	require.NoError(t, err)

	principalID, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, int64(99), principalID)
	assert.Equal(t, int64(42), claims.TenantID)
	assert.Equal(t, tenant.RoleAdmin, claims.Role)
	assert.Equal(t, "session-abc", claims.SessionID)
	assert.False(t, claims.IsImpersonation())
	assert.Nil(t, claims.Impersonation)
}

func TestImpersonationTokenClaims(t *testing.T) {
	g := NewGenerator("test-secret", "tenantcore-test", "tenantcore-test")

	tokenStr, _, err := g.IssueImpersonationToken(testPrincipal(), 1, "grant-1", 0)
	require.NoError(t, err)

	claims, err := g.ParseToken(tokenStr)
	require.NoError(t, err)

	principalID, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, int64(99), principalID)
	assert.Equal(t, int64(42), claims.TenantID)
	assert.Equal(t, tenant.RoleAdmin, claims.Role)
	assert.True(t, claims.IsImpersonation())
	require.NotNil(t, claims.Impersonation)
	assert.Equal(t, int64(1), claims.Impersonation.By)
	assert.Equal(t, "grant-1", claims.Impersonation.GrantID)
	// Each impersonation token gets its own session so switch state of the
	// granting admin never bleeds into the impersonated session.
	assert.NotEmpty(t, claims.SessionID)
}

func TestImpersonationTokenExpiry(t *testing.T) {
	g := NewGenerator("test-secret", "tenantcore-test", "tenantcore-test")

	// Zero ttl falls back to the configured default.
	_, expiresAt, err := g.IssueImpersonationToken(testPrincipal(), 1, "grant-1", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultImpersonationTokenExpiry), expiresAt, 5*time.Second)

	// An explicit ttl wins over the configured expiry.
	_, expiresAt, err = g.IssueImpersonationToken(testPrincipal(), 1, "grant-2", 30*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)
}

func TestParseTokenExpired(t *testing.T) {
	g := NewGenerator("test-secret", "tenantcore-test", "tenantcore-test",
		WithIdentityTokenExpiry(-time.Minute))

	tokenStr, _, err := g.IssueIdentityToken(testPrincipal(), "session-abc")
	require.NoError(t, err)

	_, err = g.ParseToken(tokenStr)
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeTokenExpired), "got %v", err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	g := NewGenerator("test-secret", "tenantcore-test", "tenantcore-test")
	other := NewGenerator("other-secret", "tenantcore-test", "tenantcore-test")

	tokenStr, _, err := g.IssueIdentityToken(testPrincipal(), "session-abc")
	require.NoError(t, err)

	_, err = other.ParseToken(tokenStr)
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeTokenInvalidSignature), "got %v", err)
}

func TestParseTokenGarbage(t *testing.T) {
	g := NewGenerator("test-secret", "tenantcore-test", "tenantcore-test")

	_, err := g.ParseToken("not-a-token")
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeTokenInvalid), "got %v", err)
}

func TestParseClaimsMap(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)
	claims, err := ParseClaimsMap(map[string]interface{}{
		"sub":        "99",
		"tenant_id":  float64(42),
		"role":       "admin",
		"session_id": "session-abc",
		"exp":        exp,
		"impersonation": map[string]interface{}{
			"by":       float64(1),
			"grant_id": "grant-1",
		},
	})
	require.NoError(t, err)

	principalID, err := claims.PrincipalID()
	require.NoError(t, err)
	assert.Equal(t, int64(99), principalID)
	assert.Equal(t, int64(42), claims.TenantID)
	assert.Equal(t, tenant.RoleAdmin, claims.Role)
	assert.Equal(t, "session-abc", claims.SessionID)
	require.NotNil(t, claims.Impersonation)
	assert.Equal(t, int64(1), claims.Impersonation.By)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestParseClaimsMapRejectsIncomplete(t *testing.T) {
	_, err := ParseClaimsMap(map[string]interface{}{
		"tenant_id": float64(42),
		"role":      "admin",
	})
	assert.Error(t, err)

	_, err = ParseClaimsMap(map[string]interface{}{
		"sub":       "99",
		"tenant_id": float64(42),
		"role":      "superuser",
	})
	assert.Error(t, err)
}
