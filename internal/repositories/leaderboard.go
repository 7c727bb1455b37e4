package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/sqlite"
)

// DefaultLeaderboardLimit is the number of entries returned when the caller doesn't ask for a specific amount.
const DefaultLeaderboardLimit = 10

type LeaderboardRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewLeaderboardRepository(dbs *sqlite.Database, logger *slog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{
		dbs:    dbs,
		logger: logger.With("source", "LeaderboardRepository"),
	}
}

// Submit stores the result of a user for a challenge day, replacing an earlier one of the same day.
//
// Pool challenges report day numbers 1-7 that repeat every week, so the day is a slot rather than a date: a result
// for this week's day 3 replaces the one from last week's day 3 even though the challenges differ.
func (r *LeaderboardRepository) Submit(ctx context.Context, entry models.LeaderboardEntry) error {
	// Literal colons are doubled in named queries.
	stmt := `INSERT INTO leaderboards (user_id, challenge_day, difficulty, steps_taken, time_taken_seconds)
VALUES (:user_id, :challenge_day, :difficulty, :steps_taken, :time_taken_seconds)
ON CONFLICT (user_id, challenge_day) DO UPDATE SET difficulty         = excluded.difficulty,
                                                   steps_taken        = excluded.steps_taken,
                                                   time_taken_seconds = excluded.time_taken_seconds,
                                                   created_at         = STRFTIME('%Y-%m-%dT%H::%M::%fZ')`
	if _, err := r.dbs.ReadWrite.NamedExecContext(ctx, stmt, entry); err != nil {
		return errors.Wrap(err, "upsert leaderboard entry", slog.Int("challenge_day", entry.ChallengeDay))
	}
	return nil
}

// Ranking returns the best results of a challenge day ordered by steps and then time. An empty difficulty matches
// every difficulty. The day is the repeating 1-7 slot described at Submit, so a ranking may hold results from
// different weeks' challenges that share the slot.
func (r *LeaderboardRepository) Ranking(
	ctx context.Context,
	challengeDay int,
	difficulty models.Difficulty,
	limit int,
) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	entries := []models.LeaderboardEntry{}
	stmt := `SELECT l.user_id, u.display_name, l.challenge_day, l.difficulty, l.steps_taken, l.time_taken_seconds,
       l.created_at
FROM leaderboards l
         JOIN users u ON u.id = l.user_id
WHERE l.challenge_day = :challenge_day
  AND (:difficulty = '' OR l.difficulty = :difficulty)
ORDER BY l.steps_taken, l.time_taken_seconds, l.created_at
LIMIT :limit`
	query, args, err := r.dbs.ReadOnly.BindNamed(stmt, map[string]any{
		"challenge_day": challengeDay,
		"difficulty":    string(difficulty),
		"limit":         limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "bind leaderboard query")
	}
	if err = r.dbs.ReadOnly.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, errors.Wrap(err, "select leaderboard", slog.Int("challenge_day", challengeDay))
	}
	return entries, nil
}
