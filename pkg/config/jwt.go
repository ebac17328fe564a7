package config

import (
	"time"
)

// JwtConfig holds JWT authentication configuration
// This is shared across all services to avoid duplication
type JwtConfig struct {
	Secret              string        `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer              string        `env:"JWT_ISSUER" env-default:"tenantcore"`
	Audience            string        `env:"JWT_AUDIENCE" env-default:"tenantcore"`
	IdentityExpiry      time.Duration `env:"IDENTITY_TOKEN_EXPIRY" env-default:"15m"`
	ImpersonationExpiry time.Duration `env:"IMPERSONATION_TOKEN_EXPIRY" env-default:"1h"`
}
