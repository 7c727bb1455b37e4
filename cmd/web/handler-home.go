package main

import (
	"github.com/myrjola/616degrees/internal/contexthelpers"
	"github.com/myrjola/616degrees/internal/game"
	"github.com/myrjola/616degrees/internal/models"
	"net/http"
)

type baseTemplateData struct {
	Authenticated bool
	DisplayName   string
}

type homeTemplateData struct {
	baseTemplateData
	Challenge             models.DailyChallenge
	DifficultyDescription string
	StepBudget            int
	User                  models.User
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	todays := app.challenges.Today(ctx)
	data := homeTemplateData{
		baseTemplateData: baseTemplateData{
			Authenticated: contexthelpers.IsAuthenticated(ctx),
			DisplayName:   "",
		},
		Challenge:             todays,
		DifficultyDescription: todays.Difficulty.Description(),
		StepBudget:            game.DefaultStepBudget,
		User:                  models.User{}, //nolint:exhaustruct // filled for signed-in players
	}

	if data.Authenticated {
		profile, err := app.progress.Profile(ctx, contexthelpers.AuthenticatedUserID(ctx))
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		data.User = profile.User
		data.DisplayName = profile.User.DisplayName
	}

	app.render(w, r, http.StatusOK, "home", data)
}
