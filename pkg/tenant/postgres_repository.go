package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository and PrincipalRepository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL tenant repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// GetTenant retrieves a tenant by ID
func (r *PostgresRepository) GetTenant(ctx context.Context, id int64) (Tenant, error) {
	query := `
		SELECT id, name, status, plan_id, created_at, deleted_at
		FROM tenants
		WHERE id = $1
		  AND deleted_at IS NULL
	`

	var t Tenant
	var planID sql.NullString
	var deletedAt sql.NullTime

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Status,
		&planID,
		&t.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}

	if planID.Valid {
		t.PlanID = planID.String
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}

	return t, nil
}

const principalColumns = `id, tenant_id, email, name, role, password_hash, created_at, deleted_at`

func scanPrincipal(row pgx.Row) (Principal, error) {
	var p Principal
	var name, passwordHash sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.Email,
		&name,
		&p.Role,
		&passwordHash,
		&p.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, ErrPrincipalNotFound
		}
		return Principal{}, fmt.Errorf("failed to scan principal: %w", err)
	}

	if name.Valid {
		p.Name = name.String
	}
	if passwordHash.Valid {
		p.PasswordHash = passwordHash.String
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}

	return p, nil
}

// GetPrincipal retrieves a principal by ID
func (r *PostgresRepository) GetPrincipal(ctx context.Context, id int64) (Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals
		WHERE id = $1
		  AND deleted_at IS NULL
	`
	return scanPrincipal(r.pool.QueryRow(ctx, query, id))
}

// GetPrincipalByEmail retrieves a principal by email
func (r *PostgresRepository) GetPrincipalByEmail(ctx context.Context, email string) (Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals
		WHERE email = $1
		  AND deleted_at IS NULL
	`
	return scanPrincipal(r.pool.QueryRow(ctx, query, email))
}

// FindFirstAdmin finds the lowest-id admin principal of a tenant
func (r *PostgresRepository) FindFirstAdmin(ctx context.Context, tenantID int64) (Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals
		WHERE tenant_id = $1
		  AND role = 'admin'
		  AND deleted_at IS NULL
		ORDER BY id ASC
		LIMIT 1
	`
	return scanPrincipal(r.pool.QueryRow(ctx, query, tenantID))
}
