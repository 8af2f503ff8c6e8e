package session

import "github.com/coderace-dev/coderace/internal/problem"

// Phase is the lifecycle state of a race session.
type Phase int

const (
	// PhaseConnecting is the initial state, before the transport opens.
	PhaseConnecting Phase = iota
	// PhaseWaitingForOpponent means we joined and await a second player.
	PhaseWaitingForOpponent
	// PhaseCountdown means the pre-race countdown is running.
	PhaseCountdown
	// PhaseInProgress means both players are editing against the clock.
	PhaseInProgress
	// PhaseFinished is terminal: a winner was declared or time ran out.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseWaitingForOpponent:
		return "waiting_for_opponent"
	case PhaseCountdown:
		return "countdown"
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Result is the most recent grading outcome for a player.
type Result struct {
	Success bool
	Results []string
}

// PlayerState tracks one participant. Self's Code is mutated only by
// local edit intents; Opponent's Code only by inbound code updates.
type PlayerState struct {
	Name       string
	Code       string
	LastResult *Result
}

// Outcome describes how a finished race ended. Winner is empty when the
// race timed out.
type Outcome struct {
	Winner   string
	TimedOut bool
}

// RaceSession is the authoritative client-side view of a race. It is
// owned by the session loop; consumers only ever see value copies.
type RaceSession struct {
	RoomID         string
	Phase          Phase
	Problem        *problem.Problem
	CountdownValue *int
	RemainingTime  *int
	Self           PlayerState
	Opponent       PlayerState
	Outcome        *Outcome
	// Fault holds the latest server-signaled error message, surfaced to
	// the presentation layer without forcing a phase transition.
	Fault string
}

// NewRaceSession builds the initial session for a room and local player.
func NewRaceSession(roomID, username string) RaceSession {
	return RaceSession{
		RoomID: roomID,
		Phase:  PhaseConnecting,
		Self:   PlayerState{Name: username},
	}
}
