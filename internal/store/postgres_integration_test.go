//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shortlinks"),
		postgres.WithUsername("shortlinks"),
		postgres.WithPassword("shortlinks"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("PostgreSQL container not available: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, store.MigratePostgres(ctx, pool))

	return pool
}

func TestPostgresStoreIntegration(t *testing.T) {
	pool := startPostgres(t)

	runRepositoryContract(t, func(t *testing.T) shortener.Repository {
		_, err := pool.Exec(context.Background(), "TRUNCATE entries RESTART IDENTITY")
		require.NoError(t, err)

		return store.NewPostgresStore(pool)
	})
}

func TestPostgresMigrateIsIdempotent(t *testing.T) {
	pool := startPostgres(t)

	require.NoError(t, store.MigratePostgres(context.Background(), pool))
}
