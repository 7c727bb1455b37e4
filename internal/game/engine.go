// Package game implements the rules of connecting two characters through shared comic covers.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/616degrees/internal/errors"
	"github.com/myrjola/616degrees/internal/logging"
	"github.com/myrjola/616degrees/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals // metrics registry
	Namespace: "degrees",
	Name:      "game_transitions_total",
	Help:      "Game sessions entering a status.",
}, []string{"status"})

// Catalog is the part of the catalog client the game needs.
type Catalog interface {
	ResolveCharacterByName(ctx context.Context, name string) models.Character
	FindConnectingComics(ctx context.Context, a, b int) []models.Comic
	// FallbackCharacters is a start and end pair with distinct ids.
	FallbackCharacters() (models.Character, models.Character)
}

// Result is reported to the Recorder when a persisted session ends.
type Result struct {
	SessionID string
	UserID    []byte
	Challenge models.DailyChallenge
	Won       bool
	Steps     int
	Elapsed   time.Duration
	Path      []models.PathSegment
}

// Recorder persists progress of authenticated players. Implementations handle their own failures.
type Recorder interface {
	OpenSession(ctx context.Context, userID []byte, challenge models.DailyChallenge, start, end models.Character) (
		string, error)
	Finish(ctx context.Context, result Result)
}

type Config struct {
	// StepBudget defaults to DefaultStepBudget.
	StepBudget int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Engine struct {
	catalog    Catalog
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
	stepBudget int
	// pending tracks fire-and-forget recorder calls.
	pending sync.WaitGroup
}

// NewEngine creates an Engine. recorder may be nil when progress isn't persisted.
func NewEngine(catalog Catalog, recorder Recorder, cfg Config, logger *slog.Logger) *Engine {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = DefaultStepBudget
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Engine{
		catalog:    catalog,
		recorder:   recorder,
		logger:     logging.OrDiscard(logger).With(slog.String("source", "game")),
		now:        cfg.Clock,
		stepBudget: cfg.StepBudget,
		pending:    sync.WaitGroup{},
	}
}

// Start begins a session for challenge. userID is nil for anonymous players.
func (e *Engine) Start(ctx context.Context, challenge models.DailyChallenge, userID []byte) *Session {
	s := &Session{ //nolint:exhaustruct // initialized below
		ID:         uuid.New(),
		challenge:  challenge,
		userID:     userID,
		status:     StatusInitializing,
		stepBudget: e.stepBudget,
	}
	e.initialize(ctx, s, 0)
	return s
}

// Restart discards the path and plays the same challenge again. Moves in flight are discarded. A persisted game that
// is still in progress is reported to the recorder as lost so that its row doesn't stay open.
func (e *Engine) Restart(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.status == StatusInProgress && s.persistedID != "" {
		s.finishedAt = e.now()
		e.notifyLocked(logging.WithAttrs(ctx, slog.String("game_id", s.ID.String())), s)
	}
	s.generation++
	generation := s.generation
	s.status = StatusInitializing
	s.path = nil
	s.pending = nil
	s.busy = false
	s.persistedID = ""
	s.message = ""
	s.finishedAt = time.Time{}
	s.mu.Unlock()
	e.initialize(ctx, s, generation)
}

func (e *Engine) initialize(ctx context.Context, s *Session, generation int) {
	ctx = logging.WithAttrs(ctx, slog.String("game_id", s.ID.String()))
	transitionsTotal.WithLabelValues(StatusInitializing.String()).Inc()

	var start, end models.Character
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start = e.catalog.ResolveCharacterByName(gctx, s.challenge.StartCharacter)
		return nil
	})
	g.Go(func() error {
		end = e.catalog.ResolveCharacterByName(gctx, s.challenge.EndCharacter)
		return nil
	})
	_ = g.Wait()
	if start.ID == end.ID {
		// Selecting the end would win without a move.
		e.logger.LogAttrs(ctx, slog.LevelWarn, "challenge endpoints share an id, playing the fallback pair",
			slog.Int("id", start.ID), slog.String("start", start.Name), slog.String("end", end.Name))
		start, end = e.catalog.FallbackCharacters()
	}

	var persistedID string
	if e.recorder != nil && s.userID != nil {
		var err error
		if persistedID, err = e.recorder.OpenSession(ctx, s.userID, s.challenge, start, end); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "could not open persisted session, playing unrecorded",
				errors.SlogError(err))
			persistedID = ""
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.start = start
	s.end = end
	s.path = []models.PathSegment{{Character: start, ComicConnectingToPrevious: nil}}
	s.persistedID = persistedID
	s.startedAt = e.now()
	s.status = StatusInProgress
	s.message = fmt.Sprintf("Today's %s challenge: Connect %s to %s!", s.challenge.Difficulty, start.Name, end.Name)
	transitionsTotal.WithLabelValues(StatusInProgress.String()).Inc()
	e.logger.LogAttrs(ctx, slog.LevelDebug, "game started",
		slog.String("start", start.Name), slog.String("end", end.Name))
}

// checkPlayableLocked rejects moves outside the InProgress status.
func checkPlayableLocked(s *Session) error {
	switch s.status {
	case StatusInProgress:
	case StatusInitializing:
		return ErrNotReady
	case StatusWon, StatusLost:
		return ErrFinished
	}
	if s.busy {
		return ErrBusy
	}
	return nil
}

// Select proposes candidate as the next character. The catalog is queried for shared comics while the session is
// marked busy; concurrent moves fail with ErrBusy.
func (e *Engine) Select(ctx context.Context, s *Session, candidate models.Character) (Outcome, error) {
	s.mu.Lock()
	if err := checkPlayableLocked(s); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	if candidate.ID != s.end.ID && s.inPathLocked(candidate.ID) {
		s.mu.Unlock()
		return 0, errors.Wrap(ErrAlreadyInPath, "select", slog.Int("id", candidate.ID))
	}
	s.busy = true
	s.pending = nil
	generation := s.generation
	last := s.path[len(s.path)-1].Character
	s.mu.Unlock()

	ctx = logging.WithAttrs(ctx, slog.String("game_id", s.ID.String()))
	comics := e.catalog.FindConnectingComics(ctx, last.ID, candidate.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return 0, ErrRestarted
	}
	s.busy = false

	switch len(comics) {
	case 0:
		s.message = fmt.Sprintf("Sorry, %s doesn't seem to share a cover with %s.", candidate.Name, last.Name)
		return OutcomeNoConnection, nil
	case 1:
		return e.applyLocked(ctx, s, candidate, comics[0]), nil
	default:
		s.pending = &pendingChoice{candidate: candidate, comics: comics}
		s.message = fmt.Sprintf("%s and %s share %d covers. Pick the one that connects them.",
			last.Name, candidate.Name, len(comics))
		return OutcomeChooseComic, nil
	}
}

// ChooseComic resolves a pending choice by picking the comic with comicID.
func (e *Engine) ChooseComic(ctx context.Context, s *Session, comicID int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkPlayableLocked(s); err != nil {
		return 0, err
	}
	if s.pending == nil {
		return 0, ErrNoPendingChoice
	}
	idx := slices.IndexFunc(s.pending.comics, func(c models.Comic) bool { return c.ID == comicID })
	if idx < 0 {
		return 0, errors.Wrap(ErrUnknownComic, "choose comic", slog.Int("comic_id", comicID))
	}
	ctx = logging.WithAttrs(ctx, slog.String("game_id", s.ID.String()))
	return e.applyLocked(ctx, s, s.pending.candidate, s.pending.comics[idx]), nil
}

// CancelChoice drops a pending comic choice without changing the path.
func (e *Engine) CancelChoice(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// applyLocked appends the link and evaluates the win condition before the step budget.
func (e *Engine) applyLocked(ctx context.Context, s *Session, candidate models.Character, comic models.Comic) Outcome {
	s.path = append(s.path, models.PathSegment{Character: candidate, ComicConnectingToPrevious: &comic})
	s.pending = nil
	steps := s.stepsLocked()

	switch {
	case candidate.ID == s.end.ID:
		s.status = StatusWon
		s.message = fmt.Sprintf("🎉 Victory! Connected in %d %s!", steps, pluralize(steps, "step"))
	case steps >= s.stepBudget:
		s.status = StatusLost
		s.message = "Game Over! Maximum steps reached."
	default:
		s.message = candidate.Name + " added to path!"
		e.logger.LogAttrs(ctx, slog.LevelDebug, "character added",
			slog.String("character", candidate.Name), slog.Int("steps", steps))
		return OutcomeAdded
	}

	s.finishedAt = e.now()
	transitionsTotal.WithLabelValues(s.status.String()).Inc()
	e.logger.LogAttrs(ctx, slog.LevelInfo, "game finished",
		slog.String("status", s.status.String()), slog.Int("steps", steps))
	e.notifyLocked(ctx, s)
	if s.status == StatusWon {
		return OutcomeWon
	}
	return OutcomeLost
}

// notifyLocked hands the result to the recorder without waiting for it.
func (e *Engine) notifyLocked(ctx context.Context, s *Session) {
	if e.recorder == nil || s.persistedID == "" {
		return
	}
	result := Result{
		SessionID: s.persistedID,
		UserID:    s.userID,
		Challenge: s.challenge,
		Won:       s.status == StatusWon,
		Steps:     s.stepsLocked(),
		Elapsed:   s.finishedAt.Sub(s.startedAt),
		Path:      clonePath(s.path),
	}
	ctx = context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		e.recorder.Finish(ctx, result)
	}()
}

// Wait blocks until every recorder notification has completed.
func (e *Engine) Wait() {
	e.pending.Wait()
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
