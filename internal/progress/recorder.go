// Package progress persists the results of authenticated players.
package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/game"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HistoryLimit is the number of games shown in a profile.
const HistoryLimit = 20

var failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals // metrics registry
	Namespace: "degrees",
	Name:      "progress_failures_total",
	Help:      "Failed progress writes. These never reach the player.",
}, []string{"operation"})

var _ game.Recorder = (*Recorder)(nil)

// Recorder writes game sessions, statistics, achievements and leaderboard entries.
type Recorder struct {
	sessions     *repositories.GameSessionRepository
	users        *repositories.UserRepository
	achievements *repositories.AchievementRepository
	leaderboard  *repositories.LeaderboardRepository
	now          func() time.Time
	logger       *slog.Logger
}

// NewRecorder creates a Recorder. A nil clock defaults to time.Now.
func NewRecorder(dbs *sqlite.Database, clock func() time.Time, logger *slog.Logger) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	logger = logging.OrDiscard(logger)
	return &Recorder{
		sessions:     repositories.NewGameSessionRepository(dbs, logger),
		users:        repositories.NewUserRepository(dbs, logger),
		achievements: repositories.NewAchievementRepository(dbs, logger),
		leaderboard:  repositories.NewLeaderboardRepository(dbs, logger),
		now:          clock,
		logger:       logger.With(slog.String("source", "progress")),
	}
}

// OpenSession stores a new game session and returns its id.
func (r *Recorder) OpenSession(
	ctx context.Context,
	userID []byte,
	challenge models.DailyChallenge,
	start, end models.Character,
) (string, error) {
	id, err := r.sessions.Open(ctx, userID, challenge, start.Name, end.Name)
	if err != nil {
		return "", errors.Wrap(err, "open session")
	}
	return id, nil
}

func (r *Recorder) CloseSession(ctx context.Context, sessionID string, completion models.Completion) error {
	if err := r.sessions.Close(ctx, sessionID, completion); err != nil {
		return errors.Wrap(err, "close session")
	}
	return nil
}

// RecordStatsOnWin updates the cumulative statistics of the user.
func (r *Recorder) RecordStatsOnWin(ctx context.Context, userID []byte, steps int) error {
	if err := r.users.RecordWin(ctx, userID, steps, r.now().UTC()); err != nil {
		return errors.Wrap(err, "record stats")
	}
	return nil
}

// UnlockAchievementOnce stores the achievement. Unlocking an achievement the user already has is not an error.
func (r *Recorder) UnlockAchievementOnce(
	ctx context.Context,
	userID []byte,
	achievement models.AchievementType,
	challengeDay int,
) error {
	unlocked, err := r.achievements.Unlock(ctx, userID, achievement, challengeDay)
	if err != nil {
		return errors.Wrap(err, "unlock achievement")
	}
	if unlocked {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "achievement unlocked",
			slog.String("achievement", string(achievement)))
	}
	return nil
}

func (r *Recorder) SubmitLeaderboardEntry(
	ctx context.Context,
	userID []byte,
	challenge models.DailyChallenge,
	steps int,
	elapsed time.Duration,
) error {
	entry := models.LeaderboardEntry{
		UserID:           userID,
		DisplayName:      "",
		ChallengeDay:     challenge.Day,
		Difficulty:       challenge.Difficulty,
		StepsTaken:       steps,
		TimeTakenSeconds: int(elapsed.Seconds()),
		CreatedAt:        "",
	}
	if err := r.leaderboard.Submit(ctx, entry); err != nil {
		return errors.Wrap(err, "submit leaderboard entry")
	}
	return nil
}

// Leaderboard ranks the results of a challenge day. An empty difficulty matches all of them.
func (r *Recorder) Leaderboard(
	ctx context.Context,
	challengeDay int,
	difficulty models.Difficulty,
	limit int,
) ([]models.LeaderboardEntry, error) {
	entries, err := r.leaderboard.Ranking(ctx, challengeDay, difficulty, limit)
	if err != nil {
		return nil, errors.Wrap(err, "leaderboard")
	}
	return entries, nil
}

// Profile is everything a player can see about themselves.
type Profile struct {
	User         models.User          `json:"user"`
	Achievements []models.Achievement `json:"achievements"`
	History      []models.GameRecord  `json:"history"`
}

func (r *Recorder) Profile(ctx context.Context, userID []byte) (Profile, error) {
	var (
		profile Profile
		err     error
	)
	if profile.User, err = r.users.Get(ctx, userID); err != nil {
		return Profile{}, errors.Wrap(err, "profile user")
	}
	if profile.Achievements, err = r.achievements.List(ctx, userID); err != nil {
		return Profile{}, errors.Wrap(err, "profile achievements")
	}
	if profile.History, err = r.sessions.History(ctx, userID, HistoryLimit); err != nil {
		return Profile{}, errors.Wrap(err, "profile history")
	}
	return profile, nil
}

// Earned lists the achievements a win with the given number of steps qualifies for.
func Earned(steps int) []models.AchievementType {
	earned := []models.AchievementType{models.AchievementFirstWin}
	if steps <= 3 { //nolint:mnd // speed-runner threshold
		earned = append(earned, models.AchievementSpeedRunner)
	}
	if steps == 2 { //nolint:mnd // perfect score
		earned = append(earned, models.AchievementPerfectScore)
	}
	return earned
}

// Finish closes the persisted session of a finished game. Wins also update statistics, the leaderboard and
// achievements. Failures are logged and counted but never returned since the player has already seen the outcome.
func (r *Recorder) Finish(ctx context.Context, result game.Result) {
	ctx = logging.WithAttrs(ctx,
		slog.String("game_session_id", result.SessionID),
		slog.Int("challenge_day", result.Challenge.Day))

	completion := models.Completion{
		Won:     result.Won,
		Steps:   result.Steps,
		Elapsed: result.Elapsed,
		Path:    result.Path,
	}
	if err := r.CloseSession(ctx, result.SessionID, completion); err != nil {
		r.fail(ctx, "close_session", err)
		return
	}
	if !result.Won {
		return
	}

	if err := r.RecordStatsOnWin(ctx, result.UserID, result.Steps); err != nil {
		r.fail(ctx, "record_stats", err)
	}
	if err := r.SubmitLeaderboardEntry(ctx, result.UserID, result.Challenge, result.Steps,
		result.Elapsed); err != nil {
		r.fail(ctx, "submit_leaderboard", err)
	}
	for _, achievement := range Earned(result.Steps) {
		if err := r.UnlockAchievementOnce(ctx, result.UserID, achievement, result.Challenge.Day); err != nil {
			r.fail(ctx, "unlock_achievement", err)
		}
	}
}

func (r *Recorder) fail(ctx context.Context, operation string, err error) {
	failuresTotal.WithLabelValues(operation).Inc()
	r.logger.LogAttrs(ctx, slog.LevelError, "progress not recorded",
		slog.String("operation", operation), errors.SlogError(err))
}
