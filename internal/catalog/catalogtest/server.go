// Package catalogtest serves a small in-memory comic catalog over HTTP for tests.
package catalogtest

import (
	"cmp"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type Character struct {
	ID          int
	Name        string
	Description string
}

type Comic struct {
	ID     int
	Title  string
	Issue  int
	OnSale time.Time
	Cast   []int
}

// Server mimics the catalog's public API for the endpoints the game uses.
type Server struct {
	*httptest.Server
	characters []Character
	comics     []Comic

	mu       sync.Mutex
	requests []string
	failing  atomic.Bool
}

// NewServer starts a catalog serving characters and comics. It is closed when the test ends.
func NewServer(t testing.TB, characters []Character, comics []Comic) *Server {
	t.Helper()
	s := &Server{characters: characters, comics: comics} //nolint:exhaustruct // zero values are fine
	mux := http.NewServeMux()
	mux.HandleFunc("GET /characters", s.searchCharacters)
	mux.HandleFunc("GET /characters/{id}", s.character)
	mux.HandleFunc("GET /characters/{id}/comics", s.characterComics)
	mux.HandleFunc("GET /comics/{id}", s.comic)
	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// SetFailing makes every subsequent request fail with 500.
func (s *Server) SetFailing(failing bool) {
	s.failing.Store(failing)
}

// Requests lists the received requests as path?query without the signature parameters.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("ts") == "" || query.Get("apikey") == "" || query.Get("hash") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "MissingParameter"})
			return
		}
		query.Del("ts")
		query.Del("apikey")
		query.Del("hash")
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path+"?"+query.Encode())
		s.mu.Unlock()
		if s.failing.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "InternalError"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) searchCharacters(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var results []any
	for _, c := range s.characters {
		name := strings.ToLower(c.Name)
		if exact := query.Get("name"); exact != "" && name != strings.ToLower(exact) {
			continue
		}
		if prefix := query.Get("nameStartsWith"); prefix != "" && !strings.HasPrefix(name, strings.ToLower(prefix)) {
			continue
		}
		results = append(results, characterJSON(c))
	}
	if query.Get("orderBy") == "name" {
		slices.SortStableFunc(results, func(a, b any) int {
			return cmp.Compare(a.(map[string]any)["name"].(string), b.(map[string]any)["name"].(string)) //nolint:forcetypeassert // built above
		})
	}
	writeEnvelope(w, limit(results, query.Get("limit")))
}

func (s *Server) character(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	for _, c := range s.characters {
		if c.ID == id {
			writeEnvelope(w, []any{characterJSON(c)})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"code": http.StatusNotFound, "status": "We couldn't find that character"})
}

func (s *Server) characterComics(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	comics := slices.Clone(s.comics)
	slices.SortStableFunc(comics, func(a, b Comic) int { return b.OnSale.Compare(a.OnSale) })
	var results []any
	for _, comic := range comics {
		if slices.Contains(comic.Cast, id) {
			results = append(results, comicJSON(comic))
		}
	}
	writeEnvelope(w, limit(results, r.URL.Query().Get("limit")))
}

func (s *Server) comic(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	for _, comic := range s.comics {
		if comic.ID == id {
			writeEnvelope(w, []any{comicJSON(comic)})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"code": http.StatusNotFound, "status": "We couldn't find that comic_issue"})
}

func limit(results []any, raw string) []any {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

func characterJSON(c Character) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"thumbnail": map[string]string{
			"path":      "http://i.annihil.us/u/prod/marvel/i/mg/" + strconv.Itoa(c.ID),
			"extension": "jpg",
		},
	}
}

func comicJSON(c Comic) map[string]any {
	items := make([]map[string]string, 0, len(c.Cast))
	for _, id := range c.Cast {
		items = append(items, map[string]string{
			"resourceURI": "http://gateway.marvel.com/v1/public/characters/" + strconv.Itoa(id),
			"name":        strconv.Itoa(id),
		})
	}
	return map[string]any{
		"id":          c.ID,
		"title":       c.Title,
		"issueNumber": c.Issue,
		"description": nil,
		"thumbnail": map[string]string{
			"path":      "http://i.annihil.us/u/prod/marvel/i/mg/comics/" + strconv.Itoa(c.ID),
			"extension": "jpg",
		},
		"dates": []map[string]string{
			{"type": "onsaleDate", "date": c.OnSale.Format("2006-01-02T15:04:05-0700")},
		},
		"characters": map[string]any{"items": items},
	}
}

func writeEnvelope(w http.ResponseWriter, results []any) {
	if results == nil {
		results = []any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":   http.StatusOK,
		"status": "Ok",
		"data": map[string]any{
			"offset":  0,
			"limit":   len(results),
			"total":   len(results),
			"count":   len(results),
			"results": results,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
