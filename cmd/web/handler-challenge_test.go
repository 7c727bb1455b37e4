package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_application_challenges(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, nil)
	client := server.Client()
	ctx := t.Context()

	var today struct {
		Day                   int    `json:"day"`
		StartCharacter        string `json:"startCharacter"`
		EndCharacter          string `json:"endCharacter"`
		Difficulty            string `json:"difficulty"`
		DifficultyDescription string `json:"difficultyDescription"`
	}
	status, err := client.DoJSON(ctx, http.MethodGet, "/api/challenge/today", nil, &today)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, today.Day)
	require.Equal(t, "Venom", today.StartCharacter)
	require.Equal(t, "Deadpool", today.EndCharacter)
	require.Equal(t, "Perfect for beginners - these characters have clear connections", today.DifficultyDescription)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCount  int
	}{
		{name: "all", path: "/api/challenges", wantStatus: http.StatusOK, wantCount: 21},
		{name: "easy", path: "/api/challenges?difficulty=Easy", wantStatus: http.StatusOK, wantCount: 5},
		{name: "unknown difficulty", path: "/api/challenges?difficulty=Trivial", wantStatus: http.StatusBadRequest},
		{name: "empty leaderboard", path: "/api/leaderboard", wantStatus: http.StatusOK, wantCount: 0},
		{name: "invalid day", path: "/api/leaderboard?day=0", wantStatus: http.StatusBadRequest},
		{name: "invalid limit", path: "/api/leaderboard?limit=1000", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantStatus != http.StatusOK {
				var apiErr errorJSON
				got, doErr := client.DoJSON(t.Context(), http.MethodGet, tt.path, nil, &apiErr)
				require.NoError(t, doErr)
				require.Equal(t, tt.wantStatus, got)
				require.NotEmpty(t, apiErr.Error)
				return
			}
			var items []map[string]any
			got, doErr := client.DoJSON(t.Context(), http.MethodGet, tt.path, nil, &items)
			require.NoError(t, doErr)
			require.Equal(t, tt.wantStatus, got)
			require.Len(t, items, tt.wantCount)
		})
	}
}
