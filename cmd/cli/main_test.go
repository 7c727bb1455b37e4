package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"github.com/myrjola/616degrees/internal/sqlite"
	"github.com/myrjola/616degrees/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func Test_challenges(t *testing.T) {
	dbURL := filepath.Join(t.TempDir(), "degrees.sqlite")
	env := map[string]string{"DEGREES_SQLITE_URL": dbURL}

	out, err := execute(t, env, "challenges", "list")
	require.NoError(t, err)
	require.Contains(t, out, "DAY")
	require.NotContains(t, out, "Venom")

	out, err = execute(t, env, "challenges", "seed")
	require.NoError(t, err)
	require.Equal(t, "Seeded 21 challenges\n", out)

	out, err = execute(t, env, "challenges", "list", "--difficulty", "Easy")
	require.NoError(t, err)
	require.Contains(t, out, "Venom")
	require.Contains(t, out, "Deadpool")
	require.NotContains(t, out, "Ultra Hard")

	_, err = execute(t, env, "challenges", "list", "--difficulty", "Trivial")
	require.ErrorContains(t, err, "unknown difficulty")

	out, err = execute(t, env, "challenges", "add", "--day", "30", "--start", "Groot", "--end", "Storm",
		"--difficulty", "Hard", "--description", "From the cosmos to the X-Mansion")
	require.NoError(t, err)
	require.Contains(t, out, "Saved day 30: Groot -> Storm (Hard)")

	out, err = execute(t, env, "challenges", "list", "--difficulty", "Hard")
	require.NoError(t, err)
	require.Contains(t, out, "From the cosmos to the X-Mansion")

	_, err = execute(t, env, "challenges", "add", "--day", "31", "--start", "Groot", "--end", "Groot")
	require.ErrorContains(t, err, "start and end characters must differ")

	_, err = execute(t, env, "challenges", "add", "--day", "31", "--start", "Groot", "--end", "Thor", "--describe")
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}

func Test_challengesAddDescribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "\"Tree meets thunder.\""},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	env := map[string]string{
		"DEGREES_SQLITE_URL": filepath.Join(t.TempDir(), "degrees.sqlite"),
		"OPENAI_API_KEY":     "test",
		"OPENAI_BASE_URL":    srv.URL + "/v1",
	}

	out, err := execute(t, env, "challenges", "add", "--day", "31", "--start", "Groot", "--end", "Thor",
		"--describe")
	require.NoError(t, err)
	require.Contains(t, out, `"Tree meets thunder"`)
}

func Test_leaderboard(t *testing.T) {
	dbURL := filepath.Join(t.TempDir(), "degrees.sqlite")
	env := map[string]string{}

	out, err := execute(t, env, "--sqlite-url", dbURL, "leaderboard", "--day", "1")
	require.NoError(t, err)
	require.Equal(t, "No results for day 1\n", out)

	ctx, cancel := context.WithCancel(t.Context())
	dbs, err := sqlite.NewDatabase(ctx, dbURL, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	logger := testhelpers.NewLogger(io.Discard)
	users := repositories.NewUserRepository(dbs, logger)
	board := repositories.NewLeaderboardRepository(dbs, logger)
	for _, player := range []struct {
		id    string
		name  string
		steps int
	}{
		{id: "peter", name: "True Believer #0001", steps: 4},
		{id: "miles", name: "True Believer #0002", steps: 2},
	} {
		require.NoError(t, users.Create(t.Context(), []byte(player.id), player.name))
		require.NoError(t, board.Submit(t.Context(), models.LeaderboardEntry{
			UserID:           []byte(player.id),
			DisplayName:      player.name,
			ChallengeDay:     1,
			Difficulty:       models.DifficultyEasy,
			StepsTaken:       player.steps,
			TimeTakenSeconds: 30,
			CreatedAt:        "",
		}))
	}
	cancel()
	require.NoError(t, dbs.Close())

	out, err = execute(t, env, "--sqlite-url", dbURL, "leaderboard", "--day", "1", "--difficulty", "Easy")
	require.NoError(t, err)
	require.Regexp(t, `(?s)1\s+True Believer #0002\s+Easy\s+2.*2\s+True Believer #0001\s+Easy\s+4`, out)

	_, err = execute(t, env, "--sqlite-url", dbURL, "leaderboard", "--day", "0")
	require.ErrorContains(t, err, "day must be positive")
}
