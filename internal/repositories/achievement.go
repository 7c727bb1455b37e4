package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/sqlite"
)

type AchievementRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewAchievementRepository(dbs *sqlite.Database, logger *slog.Logger) *AchievementRepository {
	return &AchievementRepository{
		dbs:    dbs,
		logger: logger.With("source", "AchievementRepository"),
	}
}

// Unlock stores the achievement unless the user already has it. It reports whether a new row was created.
func (r *AchievementRepository) Unlock(
	ctx context.Context,
	userID []byte,
	achievement models.AchievementType,
	challengeDay int,
) (bool, error) {
	stmt := `INSERT INTO achievements (user_id, achievement_type, challenge_day)
VALUES (?, ?, ?)
ON CONFLICT (user_id, achievement_type) DO NOTHING`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, userID, achievement, challengeDay)
	if err != nil {
		return false, errors.Wrap(err, "insert achievement", slog.String("achievement", string(achievement)))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected > 0, nil
}

// List returns the achievements of a user, latest first.
func (r *AchievementRepository) List(ctx context.Context, userID []byte) ([]models.Achievement, error) {
	achievements := []models.Achievement{}
	stmt := `SELECT user_id, achievement_type, challenge_day, unlocked_at
FROM achievements
WHERE user_id = ?
ORDER BY unlocked_at DESC, achievement_type`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &achievements, stmt, userID); err != nil {
		return nil, errors.Wrap(err, "select achievements")
	}
	return achievements, nil
}
