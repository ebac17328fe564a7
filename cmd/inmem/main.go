// Package main runs tenantcore without a database using in-memory
// repositories. This is useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the API without database setup
//
// Note: All data is lost when the server stops. For production, use
// cmd/tenantcore with PostgreSQL.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/tendant/chi-demo/app"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendahub/tenantcore/pkg/audit"
	auditapi "github.com/vendahub/tenantcore/pkg/audit/api"
	"github.com/vendahub/tenantcore/pkg/client"
	"github.com/vendahub/tenantcore/pkg/config"
	"github.com/vendahub/tenantcore/pkg/impersonate"
	impersonateapi "github.com/vendahub/tenantcore/pkg/impersonate/api"
	"github.com/vendahub/tenantcore/pkg/login"
	loginapi "github.com/vendahub/tenantcore/pkg/login/api"
	"github.com/vendahub/tenantcore/pkg/sequence"
	sequenceapi "github.com/vendahub/tenantcore/pkg/sequence/api"
	"github.com/vendahub/tenantcore/pkg/tenant"
	"github.com/vendahub/tenantcore/pkg/tenantctx"
	"github.com/vendahub/tenantcore/pkg/tenantswitch"
	tenantswitchapi "github.com/vendahub/tenantcore/pkg/tenantswitch/api"
	"github.com/vendahub/tenantcore/pkg/token"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting in-memory tenantcore service (no database required)")
	slog.Info(strings.Repeat("=", 60))

	tenantRepo := tenant.NewInMemoryRepository()
	auditRepo := audit.NewInMemoryRepository()
	switchRepo := tenantswitch.NewInMemoryRepository()
	sequenceRepo := sequence.NewInMemoryRepository()

	seedInitialData(tenantRepo)

	tenantService := tenant.NewService(tenantRepo, tenantRepo)
	auditService := audit.NewService(auditRepo)
	switchService := tenantswitch.NewService(switchRepo, tenantService, auditService)
	sequenceService := sequence.NewService(sequenceRepo, auditService)

	jwtSecret := config.GetEnvOrDefault("JWT_SECRET", "inmem-dev-secret-change-in-production")
	issuer := config.GetEnvOrDefault("JWT_ISSUER", "tenantcore-inmem")
	grantTTL := config.GetEnvDuration("IMPERSONATION_TOKEN_EXPIRY", time.Hour)
	port := config.GetEnvUint16("TC_PORT", 4000)

	generator := token.NewGenerator(jwtSecret, issuer, issuer,
		token.WithImpersonationTokenExpiry(grantTTL))
	impersonateService := impersonate.NewService(tenantService, tenantRepo, generator, auditService,
		impersonate.WithGrantTTL(grantTTL))
	loginService := login.NewService(tenantRepo, generator)
	resolver := tenantctx.NewResolver(tenantService)

	tokenAuth := jwtauth.New("HS256", []byte(jwtSecret), nil)

	server := app.NewApp(app.WithPort(int(port)))
	server.R.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	server.R.Route("/api/login", loginapi.NewHandle(loginService).Routes)

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(client.TenantContextMiddleware(resolver, switchService))

		r.Route("/api/impersonate", impersonateapi.NewHandle(impersonateService, tenantRepo).Routes)
		r.Route("/api/tenant-switch", tenantswitchapi.NewHandle(switchService, tenantRepo).Routes)
		r.Route("/api/audit", auditapi.NewHandle(auditService).Routes)
		r.Route("/api/fiscal", sequenceapi.NewHandle(sequenceService).Routes)

		r.Get("/api/me", func(w http.ResponseWriter, r *http.Request) {
			tc, ok := tenantctx.FromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			render.JSON(w, r, tc)
		})
	})

	slog.Info(strings.Repeat("=", 60))
	slog.Info(fmt.Sprintf("In-memory tenantcore ready on http://localhost:%d", port))
	slog.Info("")
	slog.Info("Test credentials:")
	slog.Info("  master@platform.test / password123 (master_admin, tenant 1)")
	slog.Info("  admin@loja42.test    / password123 (admin, tenant 42)")
	slog.Info("  caixa@loja42.test    / password123 (vendedor, tenant 42)")
	slog.Info("")
	slog.Info("API Endpoints:")
	slog.Info("  POST   /api/login         - Login")
	slog.Info("  POST   /api/impersonate   - Request impersonation token (master admin)")
	slog.Info("  POST   /api/tenant-switch - Switch into a tenant (master admin)")
	slog.Info("  DELETE /api/tenant-switch - Reset to home mode (master admin)")
	slog.Info("  GET    /api/audit         - Read audit log (master admin)")
	slog.Info("  POST   /api/fiscal/next   - Allocate next fiscal number")
	slog.Info("  GET    /api/me            - Effective tenant context")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}

func seedInitialData(repo *tenant.InMemoryRepository) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed hashing seed password", "err", err)
		os.Exit(-1)
	}
	now := time.Now().UTC()

	repo.AddTenant(tenant.Tenant{ID: 1, Name: "Plataforma", Status: tenant.StatusActive, PlanID: "platform", CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 42, Name: "Loja 42", Status: tenant.StatusActive, PlanID: "pro", CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 43, Name: "Loja 43", Status: tenant.StatusTrial, PlanID: "trial", CreatedAt: now})
	repo.AddTenant(tenant.Tenant{ID: 44, Name: "Loja 44", Status: tenant.StatusSuspended, PlanID: "basic", CreatedAt: now})

	repo.AddPrincipal(tenant.Principal{
		ID: 1, TenantID: 1,
		Email: "master@platform.test", Name: "Master",
		Role: tenant.RoleMasterAdmin, PasswordHash: string(hash), CreatedAt: now,
	})
	repo.AddPrincipal(tenant.Principal{
		ID: 99, TenantID: 42,
		Email: "admin@loja42.test", Name: "Gerente",
		Role: tenant.RoleAdmin, PasswordHash: string(hash), CreatedAt: now,
	})
	repo.AddPrincipal(tenant.Principal{
		ID: 100, TenantID: 42,
		Email: "caixa@loja42.test", Name: "Caixa",
		Role: tenant.RoleVendedor, PasswordHash: string(hash), CreatedAt: now,
	})
	repo.AddPrincipal(tenant.Principal{
		ID: 120, TenantID: 43,
		Email: "admin@loja43.test", Name: "Gerente",
		Role: tenant.RoleAdmin, PasswordHash: string(hash), CreatedAt: now,
	})

	slog.Info("Seeded demo tenants and principals", "tenants", 4, "principals", 4)
}
