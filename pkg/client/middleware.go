package client

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
	"github.com/vendahub/tenantcore/pkg/tenantctx"
	"github.com/vendahub/tenantcore/pkg/tenantswitch"
	"github.com/vendahub/tenantcore/pkg/token"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "tenantcore context value " + k.name
}

// ClaimsKey holds the verified *token.Claims for the request
var ClaimsKey = &contextKey{"Claims"}

// ClaimsFromContext extracts the verified token claims for the request
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*token.Claims)
	return claims, ok
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var e *tcerrors.Error
	if tcerrors.As(err, &e) {
		status = e.HTTPStatusCode()
	}
	http.Error(w, err.Error(), status)
}

// TenantContextMiddleware resolves the effective tenant context for every
// request and stores it in the request context. It runs after
// jwtauth.Verifier/Authenticator have validated the token signature.
//
// Resolution happens on every request; nothing is cached across requests.
func TenantContextMiddleware(resolver *tenantctx.Resolver, switchService *tenantswitch.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, rawClaims, err := jwtauth.FromContext(ctx)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			claims, err := token.ParseClaimsMap(rawClaims)
			if err != nil {
				slog.Error("Failed to parse token claims", "err", err)
				writeError(w, err)
				return
			}

			// Switch-session state only ever applies to master admins; the
			// resolver ignores (and logs) it for anyone else.
			var sw *tenantswitch.Session
			if claims.Role == tenant.RoleMasterAdmin && claims.SessionID != "" {
				sw, err = switchService.Active(ctx, claims.SessionID)
				if err != nil {
					slog.Error("Failed to load switch session", "session_id", claims.SessionID, "err", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			tc, err := resolver.Resolve(ctx, claims, sw)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx = context.WithValue(ctx, ClaimsKey, claims)
			ctx = tenantctx.WithTenantContext(ctx, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMasterAdmin gates a route on the token's own role, not the resolved
// effective role: a master admin in remote mode resolves to a tenant-local
// admin, but their token still identifies them for platform operations like
// impersonation, switching and audit reads.
func RequireMasterAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.Role != tenant.RoleMasterAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route on the resolved effective role
func RequireRole(minimum tenant.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := tenantctx.FromContext(r.Context())
			if !ok || !tc.Role.AtLeast(minimum) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
