// Package config provides shared configuration types and environment
// variable helpers used by the tenantcore services.
package config
