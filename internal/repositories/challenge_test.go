package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/616degrees/internal/challenge"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newSeededChallengeRepository(t *testing.T) *repositories.ChallengeRepository {
	t.Helper()
	repo := repositories.NewChallengeRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
	seed, err := challenge.Seed()
	require.NoError(t, err)
	require.NoError(t, repo.UpsertAll(context.Background(), seed))
	return repo
}

func TestChallengeRepository_InitialWeek(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newSeededChallengeRepository(t)

	record, err := repo.InitialWeek(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Venom", record.StartCharacter)
	require.Equal(t, "Deadpool", record.EndCharacter)
	require.Equal(t, models.DifficultyEasy, record.Difficulty)
	require.True(t, record.IsInitialWeek)

	_, err = repo.InitialWeek(ctx, 8)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestChallengeRepository_lists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newSeededChallengeRepository(t)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 21)
	for i := 1; i < len(all); i++ {
		require.LessOrEqual(t, all[i-1].DayNumber, all[i].DayNumber)
	}

	pool, err := repo.Pool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 14)
	for _, record := range pool {
		require.False(t, record.IsInitialWeek)
	}

	easy, err := repo.ByDifficulty(ctx, models.DifficultyEasy)
	require.NoError(t, err)
	require.Len(t, easy, 5)

	none, err := repo.ByDifficulty(ctx, "Trivial")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestChallengeRepository_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newSeededChallengeRepository(t)

	record := models.ChallengeRecord{
		ID:             0,
		DayNumber:      1,
		StartCharacter: "Venom",
		EndCharacter:   "Deadpool",
		Description:    "Symbiote meets merc",
		Difficulty:     models.DifficultyEasy,
		IsInitialWeek:  true,
	}
	require.NoError(t, repo.Add(ctx, record))

	got, err := repo.InitialWeek(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Symbiote meets merc", got.Description)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 21, "same characters replace the existing challenge")

	record.StartCharacter = "Rocket Raccoon"
	record.DayNumber = 30
	record.IsInitialWeek = false
	require.NoError(t, repo.Add(ctx, record))
	pool, err := repo.Pool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 15)
}

func TestChallengeRepository_servesSource(t *testing.T) {
	t.Parallel()
	repo := newSeededChallengeRepository(t)
	source := challenge.NewSource(repo, challenge.DefaultEpoch, nil, testhelpers.NewLogger(io.Discard))

	third := source.ForDate(context.Background(), challenge.DefaultEpoch.Add(2*24*time.Hour+time.Hour))
	require.Equal(t, 3, third.Day)
	require.Equal(t, "Havok", third.StartCharacter)
	require.Equal(t, "Groot", third.EndCharacter)

	later := source.ForDate(context.Background(), challenge.DefaultEpoch.AddDate(0, 1, 0))
	require.NotEqual(t, challenge.Fallback, later)
	require.GreaterOrEqual(t, later.Day, 1)
	require.LessOrEqual(t, later.Day, 7)
}
