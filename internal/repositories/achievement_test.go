package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestAchievementRepository_Unlock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbs := newTestDB(t)
	repo := repositories.NewAchievementRepository(dbs, testhelpers.NewLogger(io.Discard))
	userID := newTestUser(t, dbs, "Peter")

	unlocked, err := repo.Unlock(ctx, userID, models.AchievementFirstWin, 1)
	require.NoError(t, err)
	require.True(t, unlocked)

	unlocked, err = repo.Unlock(ctx, userID, models.AchievementFirstWin, 2)
	require.NoError(t, err)
	require.False(t, unlocked, "second unlock is a no-op")

	unlocked, err = repo.Unlock(ctx, userID, models.AchievementSpeedRunner, 2)
	require.NoError(t, err)
	require.True(t, unlocked)

	achievements, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	days := map[models.AchievementType]int{}
	for _, a := range achievements {
		days[a.AchievementType] = a.ChallengeDay
	}
	require.Equal(t, map[models.AchievementType]int{
		models.AchievementFirstWin:    1,
		models.AchievementSpeedRunner: 2,
	}, days)
}

func TestAchievementRepository_Unlock_unknownType(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	repo := repositories.NewAchievementRepository(dbs, testhelpers.NewLogger(io.Discard))
	userID := newTestUser(t, dbs, "Peter")

	_, err := repo.Unlock(context.Background(), userID, "daily-streak", 1)
	require.Error(t, err)
}
