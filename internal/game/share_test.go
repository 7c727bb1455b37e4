package game_test

import (
	"context"
	"testing"
	"time"

	"github.com/myrjola/616degrees/internal/game"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/stretchr/testify/require"
)

func TestShareText(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	engine := newEngine(newFakeCatalog(), nil, nil)
	s := engine.Start(ctx, todaysChallenge, nil)
	_, err := engine.Select(ctx, s, spiderMan)
	require.NoError(t, err)
	_, err = engine.Select(ctx, s, deadpool)
	require.NoError(t, err)

	want := "I played Marvel's 616 Degrees of Separation today.\n\n" +
		"Game 1:\n" +
		"I connected Venom to Deadpool in 2 steps:\n\n" +
		"🦸 Venom\n" +
		"📚 Amazing Spider-Man (1963) #300\n" +
		"🦹 Spider-Man\n" +
		"📖 Spider-Man/Deadpool (2016) #1\n" +
		"🎭 Deadpool\n" +
		"\nPlay 616 Degrees today: https://tinyurl.com/616degrees"
	require.Equal(t, want, game.ShareText(s.Snapshot()))
}

func TestJourneyText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path []models.PathSegment
		want string
	}{
		{
			name: "only start",
			path: []models.PathSegment{{Character: venom, ComicConnectingToPrevious: nil}},
			want: "No journey to share yet!",
		},
		{
			name: "issue zero is omitted",
			path: []models.PathSegment{
				{Character: venom, ComicConnectingToPrevious: nil},
				{Character: spiderMan, ComicConnectingToPrevious: &models.Comic{ID: 9, Title: "Venom Annual",
					IssueNumber: issue(0), Description: "", CoverImageURL: "", OnSaleDate: time.Time{},
					CharacterIDs: nil}},
			},
			want: "My Marvel 616 Degrees Journey:\n\n🦸 Venom\n📚 Venom Annual\n🦸 Spider-Man\n\n" +
				"Steps: 1\nPlay at: https://tinyurl.com/616degrees",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, game.JourneyText(tt.path))
		})
	}
}
