package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/aretw0/qualifica/pkg/adapters/postgres"
	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/aretw0/qualifica/pkg/ports"
	"github.com/aretw0/qualifica/pkg/ports/tests"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.SessionStore  = (*postgres.Store)(nil)
	_ ports.CatalogSource = (*postgres.Catalogs)(nil)
)

// testPool connects to QUALIFICA_TEST_POSTGRES_URL or skips the test.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("QUALIFICA_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("QUALIFICA_TEST_POSTGRES_URL not set")
	}

	require.NoError(t, postgres.Migrate(url))

	pool, err := postgres.NewPool(context.Background(), url, postgres.PoolConfig{MaxConns: 4}, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, postgres.NewStore(testPool(t)))
}

func TestPostgresStore_OptimisticConflict(t *testing.T) {
	pool := testPool(t)
	replicaA := postgres.NewStore(pool)
	replicaB := postgres.NewStore(pool)
	ctx := context.Background()
	key := domain.SessionKey("pg-conflict", t.Name())
	t.Cleanup(func() { _ = replicaA.Delete(ctx, key) })

	require.NoError(t, replicaA.Save(ctx, key, &domain.Session{CurrentStep: 1, ScoreTotal: 10, Status: domain.StatusInProgress}))
	_, err := replicaA.Load(ctx, key)
	require.NoError(t, err)
	_, err = replicaB.Load(ctx, key)
	require.NoError(t, err)

	require.NoError(t, replicaB.Save(ctx, key, &domain.Session{CurrentStep: 2, ScoreTotal: 15, Status: domain.StatusInProgress}))
	err = replicaA.Save(ctx, key, &domain.Session{CurrentStep: 2, ScoreTotal: 20, Status: domain.StatusInProgress})
	assert.ErrorIs(t, err, domain.ErrSessionConflict)
}

func TestPostgresCatalogs_Contract(t *testing.T) {
	source := postgres.NewCatalogs(testPool(t))
	catalog := domain.Catalog{
		{Order: 1, Text: "Qual o seu orçamento?", HotCriteria: "acima de 10 mil", Weight: 3},
		{Order: 0, Text: "Você é o decisor?", HotCriteria: "sim", ColdCriteria: "não", HotThreshold: domain.IntPtr(20)},
	}
	require.NoError(t, source.Put(context.Background(), "pg-contract", catalog))

	tests.CatalogSourceContractTest(t, source, "pg-contract", catalog)
}
