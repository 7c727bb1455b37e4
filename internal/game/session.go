package game

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/616degrees/internal/models"
)

// DefaultStepBudget is the number of links a player may add before losing.
const DefaultStepBudget = 6

type pendingChoice struct {
	candidate models.Character
	comics    []models.Comic
}

// Session is one play-through of a daily challenge. All access goes through the Engine.
type Session struct {
	ID uuid.UUID

	mu          sync.Mutex
	challenge   models.DailyChallenge
	userID      []byte
	status      Status
	start       models.Character
	end         models.Character
	path        []models.PathSegment
	stepBudget  int
	startedAt   time.Time
	finishedAt  time.Time
	persistedID string
	busy        bool
	pending     *pendingChoice
	message     string
	// generation increments on restart so that moves started before it are discarded.
	generation int
}

// Snapshot is an immutable view of a session.
type Snapshot struct {
	ID               string                `json:"id"`
	Status           Status                `json:"status"`
	Challenge        models.DailyChallenge `json:"challenge"`
	Start            models.Character      `json:"start"`
	End              models.Character      `json:"end"`
	Path             []models.PathSegment  `json:"path"`
	Steps            int                   `json:"steps"`
	StepBudget       int                   `json:"stepBudget"`
	StepsRemaining   int                   `json:"stepsRemaining"`
	Busy             bool                  `json:"busy"`
	PendingCandidate *models.Character     `json:"pendingCandidate,omitempty"`
	PendingComics    []models.Comic        `json:"pendingComics,omitempty"`
	Message          string                `json:"message"`
	StartedAt        time.Time             `json:"startedAt"`
	ElapsedSeconds   int                   `json:"elapsedSeconds"`
	Persisted        bool                  `json:"persisted"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		ID:               s.ID.String(),
		Status:           s.status,
		Challenge:        s.challenge,
		Start:            s.start,
		End:              s.end,
		Path:             clonePath(s.path),
		Steps:            s.stepsLocked(),
		StepBudget:       s.stepBudget,
		StepsRemaining:   max(0, s.stepBudget-s.stepsLocked()),
		Busy:             s.busy,
		PendingCandidate: nil,
		PendingComics:    nil,
		Message:          s.message,
		StartedAt:        s.startedAt,
		ElapsedSeconds:   0,
		Persisted:        s.persistedID != "",
	}
	if s.pending != nil {
		candidate := s.pending.candidate
		snapshot.PendingCandidate = &candidate
		snapshot.PendingComics = slices.Clone(s.pending.comics)
	}
	if s.status.Terminal() {
		snapshot.ElapsedSeconds = int(s.finishedAt.Sub(s.startedAt).Seconds())
	}
	return snapshot
}

// stepsLocked counts the links added so far.
func (s *Session) stepsLocked() int {
	return max(0, len(s.path)-1)
}

func (s *Session) inPathLocked(id int) bool {
	return slices.ContainsFunc(s.path, func(segment models.PathSegment) bool {
		return segment.Character.ID == id
	})
}

// UserID returns the authenticated owner or nil for anonymous sessions.
func (s *Session) UserID() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// FilterCandidates removes characters that cannot be played next: everything already in the path except the end
// character.
func (s *Session) FilterCandidates(candidates []models.Character) []models.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := make([]models.Character, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != s.end.ID && s.inPathLocked(c.ID) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// Playable returns the character with id if it is the start or end of the session. Other characters must come from
// the catalog.
func (s *Session) Playable(id int) (models.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch id {
	case s.end.ID:
		return s.end, true
	case s.start.ID:
		return s.start, true
	default:
		return models.Character{}, false
	}
}

func clonePath(path []models.PathSegment) []models.PathSegment {
	out := make([]models.PathSegment, len(path))
	for i, segment := range path {
		out[i] = segment
		if segment.ComicConnectingToPrevious != nil {
			comic := *segment.ComicConnectingToPrevious
			comic.CharacterIDs = slices.Clone(comic.CharacterIDs)
			out[i].ComicConnectingToPrevious = &comic
		}
	}
	return out
}
