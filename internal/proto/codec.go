package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coderace-dev/coderace/internal/problem"
)

var (
	// ErrUnknownType marks a frame whose discriminant is not in the
	// vocabulary. Callers drop these silently for forward compatibility.
	ErrUnknownType = errors.New("unknown message type")
	// ErrMissingField marks a frame missing a required field. Callers
	// drop these and may log them; they never fault the state machine.
	ErrMissingField = errors.New("missing required field")
)

// ServerEvent is the closed set of messages a server sends to a client.
// The codec returns exactly one of the concrete types below; consumers
// dispatch with a single type switch.
type ServerEvent interface {
	serverEvent()
}

// Countdown carries an authoritative pre-race countdown snapshot. It may
// arrive repeatedly with decreasing values; later values supersede earlier
// ones.
type Countdown struct {
	Value int
}

// RaceStarted announces the shared problem and the race duration in
// seconds. Arrives exactly once per race.
type RaceStarted struct {
	Question *problem.Problem
	Duration int
}

// CodeUpdate carries another player's latest source text.
type CodeUpdate struct {
	Username string
	Code     string
}

// SubmissionResult is a grading outcome for the named player.
type SubmissionResult struct {
	Username string
	Success  bool
	Results  []string
}

// PlayerJoined announces a join together with the room's ordered player
// pair, used for self/opponent slot assignment.
type PlayerJoined struct {
	Username string
	Players  [2]string
}

// RaceFinished ends the race with a winner. Terminal.
type RaceFinished struct {
	Winner string
}

// GameOver ends the race on timeout with no winner. Terminal.
type GameOver struct{}

// ErrorEvent is a server-signaled fault, surfaced to the user without
// forcing a phase transition.
type ErrorEvent struct {
	Message string
}

func (Countdown) serverEvent()        {}
func (RaceStarted) serverEvent()      {}
func (CodeUpdate) serverEvent()       {}
func (SubmissionResult) serverEvent() {}
func (PlayerJoined) serverEvent()     {}
func (RaceFinished) serverEvent()     {}
func (GameOver) serverEvent()         {}
func (ErrorEvent) serverEvent()       {}

// DecodeEvent parses and validates a server frame. Unknown discriminants
// return ErrUnknownType; frames missing required fields return
// ErrMissingField. Both are drop-and-continue conditions for the caller.
func DecodeEvent(data []byte) (ServerEvent, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch f.Type {
	case TypeCountdown:
		if f.Countdown == nil || *f.Countdown < 0 {
			return nil, fmt.Errorf("%w: countdown", ErrMissingField)
		}
		return Countdown{Value: *f.Countdown}, nil

	case TypeRaceStarted:
		if f.Question == nil {
			return nil, fmt.Errorf("%w: question", ErrMissingField)
		}
		return RaceStarted{Question: f.Question, Duration: f.Time}, nil

	case TypeCodeUpdate:
		if f.Username == "" {
			return nil, fmt.Errorf("%w: username", ErrMissingField)
		}
		if f.Code == nil {
			return nil, fmt.Errorf("%w: code", ErrMissingField)
		}
		return CodeUpdate{Username: f.Username, Code: *f.Code}, nil

	case TypeSubmissionResult:
		if f.Username == "" {
			return nil, fmt.Errorf("%w: username", ErrMissingField)
		}
		if f.Success == nil {
			return nil, fmt.Errorf("%w: success", ErrMissingField)
		}
		return SubmissionResult{Username: f.Username, Success: *f.Success, Results: f.Results}, nil

	case TypePlayerJoined:
		if len(f.Players) != 2 {
			return nil, fmt.Errorf("%w: players", ErrMissingField)
		}
		return PlayerJoined{Username: f.Username, Players: [2]string{f.Players[0], f.Players[1]}}, nil

	case TypeRaceFinished:
		if f.Winner == "" {
			return nil, fmt.Errorf("%w: winner", ErrMissingField)
		}
		return RaceFinished{Winner: f.Winner}, nil

	case TypeGameOver:
		return GameOver{}, nil

	case TypeError:
		return ErrorEvent{Message: f.Message}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

// EncodeEvent renders a server event to its wire frame. The inverse of
// DecodeEvent; used by the server's write loop.
func EncodeEvent(ev ServerEvent) any {
	switch e := ev.(type) {
	case Countdown:
		return frame{Type: TypeCountdown, Countdown: &e.Value}
	case RaceStarted:
		return frame{Type: TypeRaceStarted, Question: e.Question, Time: e.Duration}
	case CodeUpdate:
		return frame{Type: TypeCodeUpdate, Username: e.Username, Code: &e.Code}
	case SubmissionResult:
		return frame{Type: TypeSubmissionResult, Username: e.Username, Success: &e.Success, Results: e.Results}
	case PlayerJoined:
		return frame{Type: TypePlayerJoined, Username: e.Username, Players: e.Players[:]}
	case RaceFinished:
		return frame{Type: TypeRaceFinished, Winner: e.Winner}
	case GameOver:
		return frame{Type: TypeGameOver}
	case ErrorEvent:
		return frame{Type: TypeError, Message: e.Message}
	default:
		return nil
	}
}

// DecodeIntent parses and validates a client frame on the server side.
func DecodeIntent(data []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}

	switch in.Type {
	case TypeJoinRoom, TypeSyncCode, TypeSubmitCode:
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}

	if in.RoomID == "" {
		return Intent{}, fmt.Errorf("%w: room_id", ErrMissingField)
	}
	if in.Username == "" {
		return Intent{}, fmt.Errorf("%w: username", ErrMissingField)
	}
	if in.Type != TypeJoinRoom && in.Code == nil {
		return Intent{}, fmt.Errorf("%w: code", ErrMissingField)
	}

	return in, nil
}
