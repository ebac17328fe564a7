package sequence

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "tenantcore_db"
	dbUser := "tenantcore"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "tenantcore_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	fmt.Println("Connection string:", connString)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func seedTenant(t *testing.T, pool *pgxpool.Pool, id int64) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO tenants (id, name, status) VALUES ($1, $2, 'active')`,
		id, fmt.Sprintf("Loja %d", id))
	require.NoError(t, err)
}

func TestPostgresIncrement(t *testing.T) {
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	seedTenant(t, pool, 42)
	repo := NewPostgresRepository(pool)

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Increment(ctx, 42, "nfce-1-producao")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	current, err := repo.Current(ctx, 42, "nfce-1-producao")
	require.NoError(t, err)
	assert.Equal(t, int64(3), current)

	// Untouched keys report zero.
	current, err = repo.Current(ctx, 42, "nfce-1-homologacao")
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)
}

func TestPostgresIncrementConcurrent(t *testing.T) {
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	seedTenant(t, pool, 42)
	repo := NewPostgresRepository(pool)

	const n = 100
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Increment(ctx, 42, "nfce-1-producao")
			if err != nil {
				t.Errorf("Increment() failed: %v", err)
				return
			}
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	var values []int64
	for v := range results {
		values = append(values, v)
	}
	require.Len(t, values, n)

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		assert.Equal(t, int64(i+1), v, "values must be contiguous with no duplicates")
	}
}

func TestPostgresIncrementKeyIsolation(t *testing.T) {
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	seedTenant(t, pool, 42)
	seedTenant(t, pool, 43)
	repo := NewPostgresRepository(pool)

	_, err := repo.Increment(ctx, 42, "nfce-1-producao")
	require.NoError(t, err)
	_, err = repo.Increment(ctx, 42, "nfce-1-producao")
	require.NoError(t, err)

	got, err := repo.Increment(ctx, 42, "nfe-1-producao")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = repo.Increment(ctx, 43, "nfce-1-producao")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
