package session

import "github.com/coderace-dev/coderace/internal/proto"

// Connected transitions out of the initial phase once the transport is
// open and the join intent has been sent.
func Connected(s RaceSession) RaceSession {
	if s.Phase == PhaseConnecting {
		s.Phase = PhaseWaitingForOpponent
	}
	return s
}

// Apply is the transition function for inbound protocol events. It takes
// and returns the session by value, so every transition is testable
// without a live transport.
//
// Once the session is finished no event of any kind mutates it; late
// deliveries are tolerated as no-ops.
func Apply(s RaceSession, ev proto.ServerEvent) RaceSession {
	if s.Phase == PhaseFinished {
		return s
	}

	switch e := ev.(type) {
	case proto.PlayerJoined:
		return applyPlayerJoined(s, e)

	case proto.Countdown:
		// Values are authoritative snapshots: last write wins, whatever
		// the order of delivery.
		if s.Phase != PhaseWaitingForOpponent && s.Phase != PhaseCountdown {
			return s
		}
		s.Phase = PhaseCountdown
		v := e.Value
		s.CountdownValue = &v
		return s

	case proto.RaceStarted:
		s.Phase = PhaseInProgress
		s.Problem = e.Question
		s.CountdownValue = nil
		remaining := e.Duration
		s.RemainingTime = &remaining
		s.Self.Code = e.Question.StartingCode
		s.Opponent.Code = e.Question.StartingCode
		s.Self.LastResult = nil
		s.Opponent.LastResult = nil
		return s

	case proto.CodeUpdate:
		// Only the known opponent's edits land; self echoes and unknown
		// identities are ignored.
		if s.Phase != PhaseInProgress || e.Username != s.Opponent.Name {
			return s
		}
		s.Opponent.Code = e.Code
		return s

	case proto.SubmissionResult:
		res := &Result{Success: e.Success, Results: e.Results}
		switch e.Username {
		case s.Self.Name:
			s.Self.LastResult = res
		case s.Opponent.Name:
			s.Opponent.LastResult = res
		}
		// Unrecognized identities are a no-op, not a fault: results may
		// race with player_joined delivery.
		return s

	case proto.RaceFinished:
		s.Phase = PhaseFinished
		s.Outcome = &Outcome{Winner: e.Winner}
		s.CountdownValue = nil
		s.RemainingTime = nil
		return s

	case proto.GameOver:
		s.Phase = PhaseFinished
		s.Outcome = &Outcome{TimedOut: true}
		s.CountdownValue = nil
		s.RemainingTime = nil
		return s

	case proto.ErrorEvent:
		s.Fault = e.Message
		return s

	default:
		return s
	}
}

func applyPlayerJoined(s RaceSession, e proto.PlayerJoined) RaceSession {
	// Slot assignment is position-independent: find self in the pair and
	// take the other name as the opponent. A pair not containing the
	// local player is ignored.
	switch s.Self.Name {
	case e.Players[0]:
		s.Opponent.Name = e.Players[1]
	case e.Players[1]:
		s.Opponent.Name = e.Players[0]
	}
	return s
}

// ApplyEdit handles a local edit intent. Only the local player's code is
// ever touched, and only while the race is running.
func ApplyEdit(s RaceSession, code string) RaceSession {
	if s.Phase != PhaseInProgress {
		return s
	}
	s.Self.Code = code
	return s
}

// ApplyTick decrements the display timer by one second. The timer is
// cosmetic: reaching zero does not end the race, only the server's
// race_finished/game_over events do.
func ApplyTick(s RaceSession) RaceSession {
	if s.Phase != PhaseInProgress || s.RemainingTime == nil {
		return s
	}
	if *s.RemainingTime > 0 {
		remaining := *s.RemainingTime - 1
		s.RemainingTime = &remaining
	}
	return s
}
