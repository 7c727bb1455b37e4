package main

import (
	"encoding/json"
	"github.com/myrjola/616degrees/internal/catalog"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/models"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const catalogFailureMessage = "Failed to fetch from catalog"

type catalogProxyRequest struct {
	Endpoint string         `json:"endpoint"`
	Params   map[string]any `json:"params"`
}

// catalogParams turns the JSON params into query values. Numbers keep their literal form.
func catalogParams(raw map[string]any) (url.Values, error) {
	params := make(url.Values, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			params.Set(key, v)
		case json.Number:
			params.Set(key, v.String())
		case bool:
			params.Set(key, strconv.FormatBool(v))
		case nil:
			continue
		default:
			return nil, errors.New("unsupported param type", slog.String("param", key))
		}
	}
	return params, nil
}

// catalogProxy signs the request with the server-held credentials and returns the catalog envelope verbatim.
func (app *application) catalogProxy(w http.ResponseWriter, r *http.Request) {
	var (
		req    catalogProxyRequest
		params url.Values
		err    error
	)
	if err = decodeJSON(w, r, &req); err != nil {
		app.catalogProxyError(w, r, err)
		return
	}
	if params, err = catalogParams(req.Params); err != nil {
		app.catalogProxyError(w, r, err)
		return
	}

	status, body, err := app.gateway.Do(r.Context(), req.Endpoint, params)
	if err != nil {
		app.catalogProxyError(w, r, errors.Wrap(err, "proxy catalog request"))
		return
	}
	if !json.Valid(body) {
		app.catalogProxyError(w, r, errors.New("catalog returned invalid JSON", slog.Int("status", status)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (app *application) catalogProxyError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "catalog proxy failed", errors.SlogError(err))
	app.writeError(w, r, http.StatusInternalServerError, catalogFailureMessage)
}

// searchCharacters answers the search box. Characters already in the active game path are left out.
func (app *application) searchCharacters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	characters := app.catalog.SearchCharactersByPrefix(ctx, trimmedQuery(r, "q"))
	if s, ok := app.currentGame(r); ok {
		characters = s.FilterCandidates(characters)
	}
	if characters == nil {
		characters = []models.Character{}
	}
	app.writeJSON(w, r, http.StatusOK, characters)
}

func (app *application) comicDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		app.clientErrorMessage(w, r, http.StatusBadRequest, "comic id must be a positive integer")
		return
	}
	comic, err := app.catalog.GetComicDetails(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.catalogProxyError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, comic)
}
