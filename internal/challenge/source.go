// Package challenge decides which challenge is played on a given calendar day.
package challenge

import (
	"context"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"log/slog"
	"math"
	"time"
)

const daysInInitialWeek = 7

// DefaultEpoch is the first day of the curated initial week.
var DefaultEpoch = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // constant

// Fallback is served whenever the challenge store cannot provide today's challenge.
var Fallback = models.DailyChallenge{ //nolint:gochecknoglobals // constant
	Day:            1,
	StartCharacter: "Venom",
	EndCharacter:   "Deadpool",
	Description:    "Connect the symbiote anti-hero to the merc with a mouth",
	Difficulty:     models.DifficultyEasy,
}

// Store provides the stored challenges.
type Store interface {
	// InitialWeek returns the curated challenge for dayNumber 1-7.
	InitialWeek(ctx context.Context, dayNumber int) (models.ChallengeRecord, error)
	// Pool returns the rotating challenges in a stable order.
	Pool(ctx context.Context) ([]models.ChallengeRecord, error)
	All(ctx context.Context) ([]models.ChallengeRecord, error)
	ByDifficulty(ctx context.Context, difficulty models.Difficulty) ([]models.ChallengeRecord, error)
}

type Source struct {
	store  Store
	epoch  time.Time
	now    func() time.Time
	logger *slog.Logger
}

// NewSource creates a Source. A nil clock defaults to time.Now.
func NewSource(store Store, epoch time.Time, clock func() time.Time, logger *slog.Logger) *Source {
	if clock == nil {
		clock = time.Now
	}
	return &Source{
		store:  store,
		epoch:  epoch,
		now:    clock,
		logger: logging.OrDiscard(logger).With(slog.String("source", "challenge")),
	}
}

// DayOffset counts whole UTC calendar days from epoch to now. Days before the epoch are negative.
func DayOffset(epoch, now time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	day := func(t time.Time) int64 {
		return int64(math.Floor(float64(t.Unix()) / secondsPerDay))
	}
	return int(day(now) - day(epoch))
}

// seededRandom maps seed to a pseudo random non-negative integer below one million. The same seed always gives the
// same number so that every player sees the same pool challenge on a given day.
func seededRandom(seed int) int {
	x := math.Sin(float64(seed)) * 10000 //nolint:mnd // part of the formula
	return int(math.Floor((x - math.Floor(x)) * 1e6))
}

// Today returns the challenge of the current calendar day. It never fails.
func (s *Source) Today(ctx context.Context) models.DailyChallenge {
	return s.ForDate(ctx, s.now())
}

// ForDate returns the challenge of the calendar day containing t. The result depends only on that day and the stored
// challenges.
func (s *Source) ForDate(ctx context.Context, t time.Time) models.DailyChallenge {
	offset := DayOffset(s.epoch, t)
	ctx = logging.WithAttrs(ctx, slog.Int("day_offset", offset))

	switch {
	case offset < 0:
		return Fallback
	case offset < daysInInitialWeek:
		record, err := s.store.InitialWeek(ctx, offset+1)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "initial week challenge unavailable, using fallback",
				errors.SlogError(err))
			return Fallback
		}
		return record.Challenge(offset + 1)
	default:
		pool, err := s.store.Pool(ctx)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "challenge pool unavailable, using fallback", errors.SlogError(err))
			return Fallback
		}
		if len(pool) == 0 {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "challenge pool empty, using fallback")
			return Fallback
		}
		record := pool[seededRandom(offset)%len(pool)]
		return record.Challenge(offset%daysInInitialWeek + 1)
	}
}

// All lists every stored challenge, or the shipped seed when the store is empty or unavailable.
func (s *Source) All(ctx context.Context) []models.DailyChallenge {
	records, err := s.store.All(ctx)
	if err != nil || len(records) == 0 {
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "challenges unavailable, using seed", errors.SlogError(err))
		}
		if records, err = Seed(); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "invalid challenge seed", errors.SlogError(err))
			return []models.DailyChallenge{Fallback}
		}
	}
	return toChallenges(records)
}

// ByDifficulty lists the stored challenges of the given difficulty. Failures yield an empty list.
func (s *Source) ByDifficulty(ctx context.Context, difficulty models.Difficulty) []models.DailyChallenge {
	records, err := s.store.ByDifficulty(ctx, difficulty)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "challenges by difficulty unavailable",
			slog.String("difficulty", string(difficulty)), errors.SlogError(err))
		return []models.DailyChallenge{}
	}
	return toChallenges(records)
}

func toChallenges(records []models.ChallengeRecord) []models.DailyChallenge {
	challenges := make([]models.DailyChallenge, 0, len(records))
	for _, r := range records {
		challenges = append(challenges, r.Challenge(r.DayNumber))
	}
	return challenges
}
