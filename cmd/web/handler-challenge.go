package main

import (
	"github.com/myrjola/616degrees/internal/contexthelpers"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/myrjola/616degrees/internal/repositories"
	"net/http"
	"strconv"
)

// maxLeaderboardLimit bounds the limit query parameter.
const maxLeaderboardLimit = 100

type challengeResponse struct {
	models.DailyChallenge
	DifficultyDescription string `json:"difficultyDescription"`
}

func (app *application) todaysChallenge(w http.ResponseWriter, r *http.Request) {
	todays := app.challenges.Today(r.Context())
	app.writeJSON(w, r, http.StatusOK, challengeResponse{
		DailyChallenge:        todays,
		DifficultyDescription: todays.Difficulty.Description(),
	})
}

// listChallenges lists every known challenge, optionally narrowed to one difficulty.
func (app *application) listChallenges(w http.ResponseWriter, r *http.Request) {
	var challenges []models.DailyChallenge
	if difficulty := models.Difficulty(trimmedQuery(r, "difficulty")); difficulty != "" {
		if !difficulty.Valid() {
			app.clientErrorMessage(w, r, http.StatusBadRequest, "unknown difficulty")
			return
		}
		challenges = app.challenges.ByDifficulty(r.Context(), difficulty)
	} else {
		challenges = app.challenges.All(r.Context())
	}
	if challenges == nil {
		challenges = []models.DailyChallenge{}
	}
	app.writeJSON(w, r, http.StatusOK, challenges)
}

// leaderboard ranks the results of a challenge day. The day defaults to today's challenge.
func (app *application) leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		day   int
		limit = repositories.DefaultLeaderboardLimit
		err   error
	)
	if raw := trimmedQuery(r, "day"); raw != "" {
		if day, err = strconv.Atoi(raw); err != nil || day <= 0 {
			app.clientErrorMessage(w, r, http.StatusBadRequest, "day must be a positive integer")
			return
		}
	} else {
		day = app.challenges.Today(ctx).Day
	}
	if raw := trimmedQuery(r, "limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 || limit > maxLeaderboardLimit {
			app.clientErrorMessage(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
	}
	difficulty := models.Difficulty(trimmedQuery(r, "difficulty"))
	if difficulty != "" && !difficulty.Valid() {
		app.clientErrorMessage(w, r, http.StatusBadRequest, "unknown difficulty")
		return
	}

	entries, err := app.progress.Leaderboard(ctx, day, difficulty, limit)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	app.writeJSON(w, r, http.StatusOK, entries)
}

// me returns the statistics, achievements and recent games of the signed-in player.
func (app *application) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := app.progress.Profile(ctx, contexthelpers.AuthenticatedUserID(ctx))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}
