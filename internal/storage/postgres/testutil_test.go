package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a throwaway PostgreSQL container with the payout
// schema applied. The container and pool are torn down via t.Cleanup.
func setupTestDB(t *testing.T) *Pool {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("payouts_test"),
		postgres.WithUsername("payout"),
		postgres.WithPassword("payout"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "container connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "create pool")

	t.Cleanup(func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	applySchema(t, ctx, pool)
	return pool
}

// applySchema runs the migration SQL straight from disk. Importing the
// migrations package here would be an import cycle, so the files are
// located via the module root instead.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	dir := filepath.Join(moduleRoot(t), "internal", "storage", "migrations", "postgres")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "read migrations dir")

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	require.NotEmpty(t, names, "no migration files found in %s", dir)

	for _, name := range names {
		sql, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "read migration %s", name)

		_, err = pool.Exec(ctx, string(sql))
		require.NoError(t, err, "apply migration %s", name)
	}
}

// moduleRoot walks up from the test's working directory to the go.mod.
func moduleRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "getwd")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above test directory")
		}
		dir = parent
	}
}
