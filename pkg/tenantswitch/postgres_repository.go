package tenantswitch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL switch-session repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Get the switch state for a client session
func (r *PostgresRepository) Get(ctx context.Context, sessionID string) (Session, error) {
	query := `
		SELECT session_id, master_admin_id, active_tenant_id, entered_at
		FROM switch_sessions
		WHERE session_id = $1
	`

	var s Session
	var activeTenant sql.NullInt64

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID,
		&s.MasterAdminID,
		&activeTenant,
		&s.EnteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("failed to get switch session: %w", err)
	}

	if activeTenant.Valid {
		s.ActiveTenant = &activeTenant.Int64
	}

	return s, nil
}

// Upsert stores or replaces the switch state for a client session
func (r *PostgresRepository) Upsert(ctx context.Context, session Session) error {
	query := `
		INSERT INTO switch_sessions (session_id, master_admin_id, active_tenant_id, entered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET master_admin_id = EXCLUDED.master_admin_id,
		    active_tenant_id = EXCLUDED.active_tenant_id,
		    entered_at = EXCLUDED.entered_at
	`

	var activeTenant sql.NullInt64
	if session.ActiveTenant != nil {
		activeTenant = sql.NullInt64{Int64: *session.ActiveTenant, Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		session.SessionID,
		session.MasterAdminID,
		activeTenant,
		session.EnteredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert switch session: %w", err)
	}

	return nil
}

// Clear removes the switch state for a client session
func (r *PostgresRepository) Clear(ctx context.Context, sessionID string) error {
	query := `
		DELETE FROM switch_sessions
		WHERE session_id = $1
	`

	_, err := r.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear switch session: %w", err)
	}

	return nil
}
