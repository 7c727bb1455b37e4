package repositories_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/myrjola/616degrees/internal/random"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	dbs, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)

	t.Cleanup(func() {
		cancel()
		require.NoError(t, dbs.Close())
	})

	return dbs
}

// newBenchmarkDB creates database connection pools backed by a file for benchmarking purposes.
func newBenchmarkDB(b *testing.B) *sqlite.Database {
	b.Helper()
	benchmarkDBPath := "./benchmark.sqlite"
	ctx, cancel := context.WithCancel(context.Background())
	dbs, err := sqlite.NewDatabase(ctx, benchmarkDBPath, testhelpers.NewLogger(io.Discard))
	require.NoError(b, err)

	b.Cleanup(func() {
		cancel()
		require.NoError(b, dbs.Close())
		_ = os.Remove(benchmarkDBPath)
		_ = os.Remove(fmt.Sprintf("%s-shm", benchmarkDBPath))
		_ = os.Remove(fmt.Sprintf("%s-wal", benchmarkDBPath))
	})

	return dbs
}

// newTestUser creates a user with a random id.
func newTestUser(tb testing.TB, dbs *sqlite.Database, displayName string) []byte {
	tb.Helper()
	id, err := random.Letters(16) //nolint:mnd // long enough to be unique
	require.NoError(tb, err)
	users := repositories.NewUserRepository(dbs, testhelpers.NewLogger(io.Discard))
	require.NoError(tb, users.Create(context.Background(), []byte(id), displayName))
	return []byte(id)
}
