package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
//
// Increment is a single INSERT ... ON CONFLICT DO UPDATE statement, so the
// read-increment-write is one indivisible operation under row-level locking:
// concurrent callers for the same key serialize on the counter row while
// different keys proceed independently.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL sequence repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Increment atomically advances the counter and returns the new value
func (r *PostgresRepository) Increment(ctx context.Context, tenantID int64, name string) (int64, error) {
	query := `
		INSERT INTO sequence_counters (tenant_id, name, value, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (tenant_id, name) DO UPDATE
		SET value = sequence_counters.value + 1,
		    updated_at = NOW()
		RETURNING value
	`

	var value int64
	err := r.pool.QueryRow(ctx, query, tenantID, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %q for tenant %d: %w", name, tenantID, err)
	}

	return value, nil
}

// Current returns the last allocated value without advancing it
func (r *PostgresRepository) Current(ctx context.Context, tenantID int64, name string) (int64, error) {
	query := `
		SELECT value
		FROM sequence_counters
		WHERE tenant_id = $1
		  AND name = $2
	`

	var value int64
	err := r.pool.QueryRow(ctx, query, tenantID, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sequence %q for tenant %d: %w", name, tenantID, err)
	}

	return value, nil
}
