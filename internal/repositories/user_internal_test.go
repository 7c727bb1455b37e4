package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextStreak(t *testing.T) {
	t.Parallel()
	day := time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)
	date := func(s string) *string { return &s }
	tests := []struct {
		name       string
		lastPlayed *string
		current    int
		want       int
	}{
		{name: "never played", lastPlayed: nil, current: 0, want: 1},
		{name: "yesterday across month boundary", lastPlayed: date("2025-02-28"), current: 4, want: 5},
		{name: "same day", lastPlayed: date("2025-03-01"), current: 4, want: 4},
		{name: "two days ago", lastPlayed: date("2025-02-27"), current: 4, want: 1},
		{name: "garbage", lastPlayed: date("yesterday"), current: 4, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, nextStreak(tt.lastPlayed, tt.current, day))
		})
	}
}
