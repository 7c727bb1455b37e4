package main

import (
	"github.com/google/uuid"
	"github.com/myrjola/616degrees/internal/catalog"
	"github.com/myrjola/616degrees/internal/contexthelpers"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/game"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"log/slog"
	"net/http"
)

// gameIDSessionKey stores the id of the browser's active game in the HTTP session.
const gameIDSessionKey = "gameID"

type moveResponse struct {
	Outcome game.Outcome `json:"outcome"`
	game.Snapshot
}

type selectRequest struct {
	CharacterID int `json:"characterId"`
}

type chooseComicRequest struct {
	ComicID int `json:"comicId"`
}

type shareResponse struct {
	Text string `json:"text"`
}

// currentGame returns the active game of the browser session.
func (app *application) currentGame(r *http.Request) (*game.Session, bool) {
	raw := app.sessionManager.GetString(r.Context(), gameIDSessionKey)
	if raw == "" {
		return nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return app.games.Get(id)
}

// requireGame loads the active game or answers 404.
func (app *application) requireGame(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	s, ok := app.currentGame(r)
	if !ok {
		app.clientErrorMessage(w, r, http.StatusNotFound, "no game in progress, start one first")
		return nil, false
	}
	return s, true
}

// conflictErrors are rule violations caused by the state of the game rather than the request.
var conflictErrors = []error{ //nolint:gochecknoglobals // constant list
	game.ErrBusy,
	game.ErrFinished,
	game.ErrNotReady,
	game.ErrAlreadyInPath,
	game.ErrNoPendingChoice,
	game.ErrRestarted,
}

// gameError maps rule violations to responses the player can act on.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, game.ErrUnknownComic) {
		app.clientErrorMessage(w, r, http.StatusBadRequest, game.ErrUnknownComic.Error())
		return
	}
	for _, conflict := range conflictErrors {
		if errors.Is(err, conflict) {
			app.clientErrorMessage(w, r, http.StatusConflict, conflict.Error())
			return
		}
	}
	app.serverError(w, r, err)
}

// startGame begins today's challenge and makes it the active game of the browser. A previous game is discarded.
func (app *application) startGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if previous, ok := app.currentGame(r); ok {
		app.games.Remove(previous.ID)
	}

	todays := app.challenges.Today(ctx)
	s := app.engine.Start(ctx, todays, contexthelpers.AuthenticatedUserID(ctx))
	app.games.Add(s)
	app.sessionManager.Put(ctx, gameIDSessionKey, s.ID.String())
	app.logger.LogAttrs(ctx, slog.LevelInfo, "game started",
		slog.String("game_id", s.ID.String()), slog.Int("challenge_day", todays.Day))

	app.writeJSON(w, r, http.StatusCreated, s.Snapshot())
}

func (app *application) getGame(w http.ResponseWriter, r *http.Request) {
	s, ok := app.requireGame(w, r)
	if !ok {
		return
	}
	app.writeJSON(w, r, http.StatusOK, s.Snapshot())
}

func (app *application) restartGame(w http.ResponseWriter, r *http.Request) {
	s, ok := app.requireGame(w, r)
	if !ok {
		return
	}
	app.engine.Restart(r.Context(), s)
	app.writeJSON(w, r, http.StatusOK, s.Snapshot())
}

// candidate finds the proposed character. The start and end characters are known to the session already, which keeps
// placeholder characters playable.
func (app *application) candidate(r *http.Request, s *game.Session, id int) (models.Character, error) {
	if character, ok := s.Playable(id); ok {
		return character, nil
	}
	if id == catalog.PlaceholderCharacterID {
		return models.Character{}, errors.Wrap(catalog.ErrNotFound, "placeholder is not playable")
	}
	character, err := app.catalog.GetCharacterByID(r.Context(), id)
	if err != nil {
		return models.Character{}, errors.Wrap(err, "get character", slog.Int("id", id))
	}
	return character, nil
}

func (app *application) selectCharacter(w http.ResponseWriter, r *http.Request) {
	s, ok := app.requireGame(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil || req.CharacterID <= 0 {
		app.clientErrorMessage(w, r, http.StatusBadRequest, "characterId must be a positive integer")
		return
	}

	ctx := logging.WithAttrs(r.Context(), slog.String("game_id", s.ID.String()))
	r = r.WithContext(ctx)
	character, err := app.candidate(r, s, req.CharacterID)
	if errors.Is(err, catalog.ErrNotFound) {
		app.clientErrorMessage(w, r, http.StatusNotFound, "character not found in catalog")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	outcome, err := app.engine.Select(ctx, s, character)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, moveResponse{Outcome: outcome, Snapshot: s.Snapshot()})
}

func (app *application) chooseComic(w http.ResponseWriter, r *http.Request) {
	s, ok := app.requireGame(w, r)
	if !ok {
		return
	}
	var req chooseComicRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.clientErrorMessage(w, r, http.StatusBadRequest, "comicId must be an integer")
		return
	}

	ctx := logging.WithAttrs(r.Context(), slog.String("game_id", s.ID.String()))
	outcome, err := app.engine.ChooseComic(ctx, s, req.ComicID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, moveResponse{Outcome: outcome, Snapshot: s.Snapshot()})
}

func (app *application) cancelComicChoice(w http.ResponseWriter, r *http.Request) {
	s, ok := app.requireGame(w, r)
	if !ok {
		return
	}
	app.engine.CancelChoice(s)
	app.writeJSON(w, r, http.StatusOK, s.Snapshot())
}

// shareGame returns the text a player pastes to social media: the victory summary after a win, the journey so far
// otherwise.
func (app *application) shareGame(w http.ResponseWriter, r *http.Request) {
	s, ok := app.requireGame(w, r)
	if !ok {
		return
	}
	snapshot := s.Snapshot()
	text := game.JourneyText(snapshot.Path)
	if snapshot.Status == game.StatusWon {
		text = game.ShareText(snapshot)
	}
	app.writeJSON(w, r, http.StatusOK, shareResponse{Text: text})
}
