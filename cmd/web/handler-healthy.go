package main

import "net/http"

type healthResponse struct {
	Status       string `json:"status"`
	ChallengeDay int    `json:"challengeDay"`
}

// healthy reports ok together with the day number of the challenge currently being served.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:       "ok",
		ChallengeDay: app.challenges.Today(r.Context()).Day,
	})
}
