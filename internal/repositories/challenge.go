package repositories

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/sqlite"
)

const challengeColumns = `id, day_number, start_character, end_character, description, difficulty, is_initial_week`

type ChallengeRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewChallengeRepository(dbs *sqlite.Database, logger *slog.Logger) *ChallengeRepository {
	return &ChallengeRepository{
		dbs:    dbs,
		logger: logger.With("source", "ChallengeRepository"),
	}
}

// InitialWeek returns the curated challenge of the given day of the first week.
func (r *ChallengeRepository) InitialWeek(ctx context.Context, dayNumber int) (models.ChallengeRecord, error) {
	var record models.ChallengeRecord
	stmt := `SELECT ` + challengeColumns + ` FROM daily_challenges WHERE day_number = ? AND is_initial_week = 1`
	if err := r.dbs.ReadOnly.GetContext(ctx, &record, stmt, dayNumber); err != nil {
		return models.ChallengeRecord{}, errors.Wrap(notFound(err), "read initial week challenge",
			slog.Int("day", dayNumber))
	}
	return record, nil
}

// Pool returns the rotating challenges in a stable order so that the daily pick is deterministic.
func (r *ChallengeRepository) Pool(ctx context.Context) ([]models.ChallengeRecord, error) {
	var records []models.ChallengeRecord
	stmt := `SELECT ` + challengeColumns + ` FROM daily_challenges WHERE is_initial_week = 0 ORDER BY id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt); err != nil {
		return nil, errors.Wrap(err, "select challenge pool")
	}
	return records, nil
}

func (r *ChallengeRepository) All(ctx context.Context) ([]models.ChallengeRecord, error) {
	var records []models.ChallengeRecord
	stmt := `SELECT ` + challengeColumns + ` FROM daily_challenges ORDER BY day_number, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt); err != nil {
		return nil, errors.Wrap(err, "select challenges")
	}
	return records, nil
}

func (r *ChallengeRepository) ByDifficulty(
	ctx context.Context,
	difficulty models.Difficulty,
) ([]models.ChallengeRecord, error) {
	var records []models.ChallengeRecord
	stmt := `SELECT ` + challengeColumns + ` FROM daily_challenges WHERE difficulty = ? ORDER BY day_number, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt, difficulty); err != nil {
		return nil, errors.Wrap(err, "select challenges by difficulty",
			slog.String("difficulty", string(difficulty)))
	}
	return records, nil
}

const upsertChallengeStmt = `INSERT INTO daily_challenges (day_number, start_character, end_character, description,
                              difficulty, is_initial_week)
VALUES (:day_number, :start_character, :end_character, :description, :difficulty, :is_initial_week)
ON CONFLICT (start_character, end_character) DO UPDATE SET day_number      = excluded.day_number,
                                                           description     = excluded.description,
                                                           difficulty      = excluded.difficulty,
                                                           is_initial_week = excluded.is_initial_week`

// Add stores a challenge, replacing the one with the same start and end characters.
func (r *ChallengeRepository) Add(ctx context.Context, record models.ChallengeRecord) error {
	if _, err := r.dbs.ReadWrite.NamedExecContext(ctx, upsertChallengeStmt, record); err != nil {
		return errors.Wrap(err, "upsert challenge",
			slog.String("start", record.StartCharacter), slog.String("end", record.EndCharacter))
	}
	return nil
}

// UpsertAll stores the records in a single transaction.
func (r *ChallengeRepository) UpsertAll(ctx context.Context, records []models.ChallengeRecord) (err error) {
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
	for _, record := range records {
		if _, err = tx.NamedExecContext(ctx, upsertChallengeStmt, record); err != nil {
			return errors.Wrap(err, "upsert challenge",
				slog.String("start", record.StartCharacter), slog.String("end", record.EndCharacter))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}
