package main

import (
	"github.com/justinas/alice"
	"github.com/myrjola/616degrees/ui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", cacheForeverHeaders(http.FileServerFS(ui.Static)))
	mux.HandleFunc("GET /placeholder.svg", app.placeholderSVG)
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", promhttp.Handler())

	// The catalog proxy and the read-only endpoints don't touch the HTTP session.
	mux.HandleFunc("POST /api/catalog", app.catalogProxy)
	mux.HandleFunc("GET /api/challenge/today", app.todaysChallenge)
	mux.HandleFunc("GET /api/challenges", app.listChallenges)
	mux.HandleFunc("GET /api/comics/{id}", app.comicDetails)
	mux.HandleFunc("GET /api/leaderboard", app.leaderboard)

	session := alice.New(
		app.sessionManager.LoadAndSave,
		app.noSurf,
		app.webAuthnHandler.AuthenticateMiddleware,
		commonContext,
	)
	authenticated := session.Append(app.requireAuthentication)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("GET /api/characters", session.ThenFunc(app.searchCharacters))

	mux.Handle("POST /api/game", session.ThenFunc(app.startGame))
	mux.Handle("GET /api/game", session.ThenFunc(app.getGame))
	mux.Handle("POST /api/game/restart", session.ThenFunc(app.restartGame))
	mux.Handle("POST /api/game/select", session.ThenFunc(app.selectCharacter))
	mux.Handle("POST /api/game/comic", session.ThenFunc(app.chooseComic))
	mux.Handle("DELETE /api/game/comic", session.ThenFunc(app.cancelComicChoice))
	mux.Handle("GET /api/game/share", session.ThenFunc(app.shareGame))

	mux.Handle("GET /api/me", authenticated.ThenFunc(app.me))

	mux.Handle("POST /api/registration/start", session.ThenFunc(app.beginRegistration))
	mux.Handle("POST /api/registration/finish", session.ThenFunc(app.finishRegistration))
	mux.Handle("POST /api/login/start", session.ThenFunc(app.beginLogin))
	mux.Handle("POST /api/login/finish", session.ThenFunc(app.finishLogin))
	mux.Handle("POST /api/logout", session.ThenFunc(app.logout))

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders, func(next http.Handler) http.Handler {
		return timeoutHandler(next, defaultTimeout)
	})
	return common.Then(mux)
}
