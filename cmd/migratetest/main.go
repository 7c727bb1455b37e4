package main

import (
	"context"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"log/slog"
	"os"
	"time"
)

func count(ctx context.Context, db *sqlite.Database, table string) (int, error) {
	var n int
	if err := db.ReadOnly.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table); err != nil {
		return 0, errors.Wrap(err, "count rows", slog.String("table", table))
	}
	return n, nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("DEGREES_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "DEGREES_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// A migrated production copy has seeded challenges and registered players.
	challenges, err := count(ctx, db, "daily_challenges")
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching challenge count", errors.SlogError(err))
		os.Exit(1)
	}
	if challenges == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no challenges found, something is likely wrong")
		os.Exit(1)
	}
	users, err := count(ctx, db, "users")
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching user count", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "row counts", slog.Int("challenges", challenges), slog.Int("users", users))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
