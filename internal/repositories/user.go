package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/sqlite"
)

type UserRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewUserRepository(dbs *sqlite.Database, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		dbs:    dbs,
		logger: logger.With("source", "UserRepository"),
	}
}

const userColumns = `id, display_name, total_games_played, total_wins, best_score, current_streak, longest_streak,
       last_played_date, created_at, updated_at`

// Create inserts a user with empty statistics.
func (r *UserRepository) Create(ctx context.Context, id []byte, displayName string) error {
	stmt := `INSERT INTO users (id, display_name) VALUES (?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, id, displayName); err != nil {
		return errors.Wrap(err, "insert user", slog.String("display_name", displayName))
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id []byte) (models.User, error) {
	var user models.User
	stmt := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &user, stmt, id); err != nil {
		return models.User{}, errors.Wrap(notFound(err), "read user")
	}
	return user, nil
}

// RecordWin counts a won game, lowers the best score when steps beat it and advances the daily streak.
func (r *UserRepository) RecordWin(ctx context.Context, id []byte, steps int, playedOn time.Time) (err error) {
	var tx *sqlx.Tx
	if tx, err = r.dbs.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Join(err, errors.Wrap(rollbackErr, "rollback"))
			}
		}
	}()

	var user models.User
	if err = tx.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return errors.Wrap(notFound(err), "read user")
	}

	streak := nextStreak(user.LastPlayedDate, user.CurrentStreak, playedOn)
	// Literal colons are doubled in named queries.
	stmt := `UPDATE users
SET total_games_played = total_games_played + 1,
    total_wins         = total_wins + 1,
    best_score         = CASE WHEN best_score IS NULL OR best_score > :steps THEN :steps ELSE best_score END,
    current_streak     = :streak,
    longest_streak     = MAX(longest_streak, :streak),
    last_played_date   = :played_on,
    updated_at         = STRFTIME('%Y-%m-%dT%H::%M::%fZ')
WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, stmt, map[string]any{
		"id":        id,
		"steps":     steps,
		"streak":    streak,
		"played_on": playedOn.Format(time.DateOnly),
	}); err != nil {
		return errors.Wrap(err, "update user stats", slog.Int("steps", steps))
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// nextStreak continues the streak when the previous win was yesterday and restarts it otherwise. Several wins on the
// same day count once.
func nextStreak(lastPlayed *string, current int, playedOn time.Time) int {
	if lastPlayed == nil {
		return 1
	}
	last, err := time.Parse(time.DateOnly, *lastPlayed)
	if err != nil {
		return 1
	}
	today := playedOn.Format(time.DateOnly)
	switch today {
	case last.Format(time.DateOnly):
		return max(current, 1)
	case last.AddDate(0, 0, 1).Format(time.DateOnly):
		return current + 1
	default:
		return 1
	}
}
