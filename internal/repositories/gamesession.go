package repositories

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/sqlite"
)

type GameSessionRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewGameSessionRepository(dbs *sqlite.Database, logger *slog.Logger) *GameSessionRepository {
	return &GameSessionRepository{
		dbs:    dbs,
		logger: logger.With("source", "GameSessionRepository"),
	}
}

// Open inserts an uncompleted session and returns its id.
func (r *GameSessionRepository) Open(
	ctx context.Context,
	userID []byte,
	challenge models.DailyChallenge,
	start, end string,
) (string, error) {
	id := uuid.NewString()
	stmt := `INSERT INTO game_sessions (id, user_id, challenge_day, start_character, end_character, difficulty)
VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, id, userID, challenge.Day, start, end,
		challenge.Difficulty); err != nil {
		return "", errors.Wrap(err, "insert game session", slog.Int("challenge_day", challenge.Day))
	}
	return id, nil
}

// Close stores the final state of an open session. Closing a session twice fails with ErrNotFound.
func (r *GameSessionRepository) Close(ctx context.Context, id string, completion models.Completion) error {
	path, err := json.Marshal(completion.Path)
	if err != nil {
		return errors.Wrap(err, "JSON encode path")
	}
	stmt := `UPDATE game_sessions
SET completed          = 1,
    won                = ?,
    steps_taken        = ?,
    time_taken_seconds = ?,
    connection_path    = ?,
    completed_at       = STRFTIME('%Y-%m-%dT%H:%M:%fZ')
WHERE id = ? AND completed = 0`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, completion.Won, completion.Steps,
		int(completion.Elapsed.Seconds()), string(path), id)
	if err != nil {
		return errors.Wrap(err, "update game session", slog.String("game_session_id", id))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "close game session", slog.String("game_session_id", id))
	}
	return nil
}

func (r *GameSessionRepository) Get(ctx context.Context, id string) (models.GameRecord, error) {
	var record models.GameRecord
	stmt := `SELECT ` + gameSessionColumns + ` FROM game_sessions WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &record, stmt, id); err != nil {
		return models.GameRecord{}, errors.Wrap(notFound(err), "read game session", slog.String("game_session_id", id))
	}
	return record, nil
}

// History lists the latest sessions of a user, newest first.
func (r *GameSessionRepository) History(ctx context.Context, userID []byte, limit int) ([]models.GameRecord, error) {
	records := []models.GameRecord{}
	stmt := `SELECT ` + gameSessionColumns + ` FROM game_sessions WHERE user_id = ? ORDER BY started_at DESC, id LIMIT ?`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &records, stmt, userID, limit); err != nil {
		return nil, errors.Wrap(err, "select game history")
	}
	return records, nil
}

const gameSessionColumns = `id, user_id, challenge_day, start_character, end_character, difficulty, completed, won,
       steps_taken, time_taken_seconds, connection_path, started_at, completed_at`
