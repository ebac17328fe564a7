package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"

	"github.com/vendahub/tenantcore/pkg/audit"
	auditapi "github.com/vendahub/tenantcore/pkg/audit/api"
	"github.com/vendahub/tenantcore/pkg/client"
	pkgconfig "github.com/vendahub/tenantcore/pkg/config"
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

type Config struct {
	DbConfig  pkgconfig.DatabaseConfig
	JwtConfig pkgconfig.JwtConfig
}

// loadEnvFile loads a .env file from the executable directory or the
// current working directory, if one exists
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}
	envFile := filepath.Join(filepath.Dir(execPath), ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get current working directory", "error", err)
			return
		}
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Error("Failed to load .env file", "error", err, "path", envFile)
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	dbURL := config.DbConfig.ToDatabaseURL()
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		slog.Error("Failed creating database pool", "error", err)
		os.Exit(-1)
	}

	tenantRepo := tenant.NewPostgresRepository(pool)
	auditRepo := audit.NewPostgresRepository(pool)
	switchRepo := tenantswitch.NewPostgresRepository(pool)
	sequenceRepo := sequence.NewPostgresRepository(pool)

	tenantService := tenant.NewService(tenantRepo, tenantRepo)
	auditService := audit.NewService(auditRepo)
	switchService := tenantswitch.NewService(switchRepo, tenantService, auditService)
	sequenceService := sequence.NewService(sequenceRepo, auditService)

	generator := token.NewGenerator(config.JwtConfig.Secret, config.JwtConfig.Issuer, config.JwtConfig.Audience,
		token.WithIdentityTokenExpiry(config.JwtConfig.IdentityExpiry),
		token.WithImpersonationTokenExpiry(config.JwtConfig.ImpersonationExpiry))
	impersonateService := impersonate.NewService(tenantService, tenantRepo, generator, auditService,
		impersonate.WithGrantTTL(config.JwtConfig.ImpersonationExpiry))
	loginService := login.NewService(tenantRepo, generator)
	resolver := tenantctx.NewResolver(tenantService)

	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.Secret), nil)

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

	server.Run()
}
