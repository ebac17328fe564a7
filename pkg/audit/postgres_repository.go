package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
// The audit_entries table has no UPDATE or DELETE path in this codebase.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL audit repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Append durably stores one entry
func (r *PostgresRepository) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_entries (id, created_at, actor_id, action, target_tenant_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.CreatedAt,
		entry.ActorID,
		entry.Action,
		entry.TargetTenantID,
		entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// Query returns entries matching the filters, newest first
func (r *PostgresRepository) Query(ctx context.Context, filters QueryFilters) ([]Entry, error) {
	var conditions []string
	var args []interface{}

	if filters.ActorID != 0 {
		args = append(args, filters.ActorID)
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filters.TargetTenantID != 0 {
		args = append(args, filters.TargetTenantID)
		conditions = append(conditions, fmt.Sprintf("target_tenant_id = $%d", len(args)))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}

	query := `
		SELECT id, created_at, actor_id, action, target_tenant_id, detail
		FROM audit_entries
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID,
			&e.CreatedAt,
			&e.ActorID,
			&e.Action,
			&e.TargetTenantID,
			&e.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", rows.Err())
	}

	return entries, nil
}
