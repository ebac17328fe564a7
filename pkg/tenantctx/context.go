package tenantctx

import (
	"context"
	"log/slog"

	"github.com/vendahub/tenantcore/pkg/tenant"
)

// TenantContext is the resolved (tenant, role) pair for one request. It is
// constructed only by Resolver.Resolve and must be passed explicitly to every
// tenant-scoped data-access call; there is no global or thread-local current
// tenant anywhere in this module.
type TenantContext struct {
	TenantID     int64       `json:"tenant_id"`
	Role         tenant.Role `json:"role"`
	PrincipalID  int64       `json:"principal_id"`
	Impersonated bool        `json:"impersonated,omitempty"`
	RemoteMode   bool        `json:"remote_mode,omitempty"`
}

func (tc TenantContext) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tenant_id", tc.TenantID),
		slog.String("role", string(tc.Role)),
		slog.Int64("principal_id", tc.PrincipalID),
		slog.Bool("impersonated", tc.Impersonated),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "tenantcore context value " + k.name
}

var tenantContextKey = &contextKey{"TenantContext"}

// WithTenantContext returns a copy of ctx carrying the resolved tenant context
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext extracts the resolved tenant context from ctx.
// The second return value is false when no resolution ran for this request;
// callers must treat that as unauthorized, never as "global scope".
func FromContext(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey).(TenantContext)
	return tc, ok
}
