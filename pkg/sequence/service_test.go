package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendahub/tenantcore/pkg/audit"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewInMemoryRepository(), audit.NewService(audit.NewInMemoryRepository()))
}

func TestNextStartsAtOne(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := service.Next(ctx, 42, "nfce-1-producao")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNextConcurrentUniqueContiguous(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	const n = 500
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := service.Next(ctx, 42, "nfce-1-producao")
			if err != nil {
				t.Errorf("Next() failed: %v", err)
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
		// Contiguous 1..n with no duplicates and no gaps.
		assert.Equal(t, int64(i+1), v)
	}
}

func TestNextTenantIsolation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := service.Next(ctx, 42, "nfce-1-producao")
		require.NoError(t, err)
	}

	// The same key under another tenant starts its own count.
	got, err := service.Next(ctx, 43, "nfce-1-producao")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestNextFiscalEnvironmentSeparation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.NextFiscal(ctx, 42, DocNFCe, 1, EnvProducao)
		require.NoError(t, err)
	}

	// Same tenant, doc type and series in the other environment is an
	// independent sequence.
	got, err := service.NextFiscal(ctx, 42, DocNFCe, 1, EnvHomologacao)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	// A different series is independent too.
	got, err = service.NextFiscal(ctx, 42, DocNFCe, 2, EnvProducao)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestNextFiscalValidation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.NextFiscal(ctx, 42, DocumentType("boleto"), 1, EnvProducao)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeInvalidInput), "got %v", err)

	_, err = service.NextFiscal(ctx, 42, DocNFe, 1, Environment("staging"))
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeInvalidInput), "got %v", err)

	_, err = service.NextFiscal(ctx, 42, DocNFe, 0, EnvProducao)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeInvalidInput), "got %v", err)
}

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "nfce-1-producao", Key(DocNFCe, 1, EnvProducao))
	assert.Equal(t, "nfe-3-homologacao", Key(DocNFe, 3, EnvHomologacao))
}

// conflictRepository always loses the counter race, driving the retry loop
// to exhaustion.
type conflictRepository struct {
	calls int
}

func (r *conflictRepository) Increment(ctx context.Context, tenantID int64, name string) (int64, error) {
	r.calls++
	return 0, ErrCounterConflict
}

func (r *conflictRepository) Current(ctx context.Context, tenantID int64, name string) (int64, error) {
	return 0, nil
}

func TestNextContentionExhaustsRetriesAndAudits(t *testing.T) {
	repo := &conflictRepository{}
	auditRepo := audit.NewInMemoryRepository()
	service := NewService(repo, audit.NewService(auditRepo))
	ctx := context.Background()

	_, err := service.Next(ctx, 42, "nfce-1-producao")
	require.Error(t, err)
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeSequenceContention), "got %v", err)
	assert.Equal(t, DefaultMaxAttempts, repo.calls)

	var e *tcerrors.Error
	require.True(t, tcerrors.As(err, &e))
	assert.True(t, e.Retryable())

	entries, err := auditRepo.Query(ctx, audit.QueryFilters{Action: audit.ActionSequenceConflict})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].TargetTenantID)
}

func TestWithMaxAttempts(t *testing.T) {
	repo := &conflictRepository{}
	service := NewService(repo, audit.NewService(audit.NewInMemoryRepository()), WithMaxAttempts(2))

	_, err := service.Next(context.Background(), 42, "nfe-1-producao")
	require.Error(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestNextInputValidation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Next(ctx, 0, "nfce-1-producao")
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeInvalidInput), "got %v", err)

	_, err = service.Next(ctx, 42, "")
	assert.True(t, tcerrors.IsCode(err, tcerrors.ErrCodeInvalidInput), "got %v", err)
}
