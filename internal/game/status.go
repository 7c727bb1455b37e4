package game

import "github.com/myrjola/616degrees/internal/errors"

// Status is the lifecycle stage of a session. Won and Lost are terminal until an explicit restart.
type Status int

const (
	StatusInitializing Status = iota
	StatusInProgress
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusInProgress:
		return "in_progress"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome tells the caller what a move did.
type Outcome int

const (
	// OutcomeAdded appended the candidate and the game continues.
	OutcomeAdded Outcome = iota
	// OutcomeNoConnection left the path unchanged because the characters share no comic.
	OutcomeNoConnection
	// OutcomeChooseComic left the path unchanged until the player picks one of several shared comics.
	OutcomeChooseComic
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeNoConnection:
		return "no_connection"
	case OutcomeChooseComic:
		return "choose_comic"
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var (
	ErrBusy            = errors.NewSentinel("a connection lookup is already in progress")
	ErrFinished        = errors.NewSentinel("game is over")
	ErrNotReady        = errors.NewSentinel("game is still initializing")
	ErrAlreadyInPath   = errors.NewSentinel("character is already in the path")
	ErrNoPendingChoice = errors.NewSentinel("no comic choice is pending")
	ErrUnknownComic    = errors.NewSentinel("comic is not one of the offered choices")
	ErrRestarted       = errors.NewSentinel("game was restarted while the move was in progress")
)
