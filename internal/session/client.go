package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coderace-dev/coderace/internal/proto"
)

type intentKind int

const (
	intentEdit intentKind = iota
	intentSubmit
)

type intent struct {
	kind intentKind
	code string
}

// Session runs the client-side race state machine. All transport events
// and local intents are serialized through one loop goroutine, so the
// RaceSession needs no locking; consumers observe it through value
// snapshots only.
type Session struct {
	log       *zerolog.Logger
	transport Transport
	clock     Clock
	url       string

	state     RaceSession
	intents   chan intent
	snapshots chan RaceSession
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a session for the given room and player. A nil clock falls
// back to the system clock.
func New(roomID, username, url string, t Transport, clock Clock, logger *zerolog.Logger) *Session {
	if clock == nil {
		clock = RealClock()
	}
	return &Session{
		log:       logger,
		transport: t,
		clock:     clock,
		url:       url,
		state:     NewRaceSession(roomID, username),
		intents:   make(chan intent, 32),
		snapshots: make(chan RaceSession, 32),
		done:      make(chan struct{}),
	}
}

// Snapshots delivers a copy of the session state after every change.
// Slow consumers miss older snapshots, never the latest one and never
// the loop.
func (s *Session) Snapshots() <-chan RaceSession {
	return s.snapshots
}

// TypeCode records a local edit. Called on every keystroke-level change;
// no coalescing happens here or downstream.
func (s *Session) TypeCode(code string) {
	select {
	case s.intents <- intent{kind: intentEdit, code: code}:
	case <-s.done:
	}
}

// Submit sends the local player's current code for grading.
func (s *Session) Submit() {
	select {
	case s.intents <- intent{kind: intentSubmit}:
	case <-s.done:
	}
}

// Close ends the session. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.transport.Close()
}

// Run connects, joins the room, and consumes events until the transport
// closes, the context is cancelled, or Close is called. The transport is
// released on every exit path.
func (s *Session) Run(ctx context.Context) error {
	defer s.transport.Close()

	if err := s.transport.Connect(ctx, s.url); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := s.transport.Send(ctx, proto.JoinRoom(s.state.RoomID, s.state.Self.Name)); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	s.state = Connected(s.state)
	s.publish()

	var (
		ticker Ticker
		tickCh <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickCh = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.done:
			return nil

		case ev, ok := <-s.transport.Events():
			if !ok {
				// Connection gone: the session is over, in-flight
				// intents are lost.
				return nil
			}
			s.state = Apply(s.state, ev)
			if s.state.Phase == PhaseInProgress && ticker == nil {
				ticker = s.clock.NewTicker(time.Second)
				tickCh = ticker.C()
			}
			if s.state.Phase != PhaseInProgress {
				stopTicker()
			}
			s.publish()

		case in := <-s.intents:
			s.handleIntent(ctx, in)

		case <-tickCh:
			s.state = ApplyTick(s.state)
			s.publish()
		}
	}
}

func (s *Session) handleIntent(ctx context.Context, in intent) {
	if s.state.Phase != PhaseInProgress {
		return
	}

	switch in.kind {
	case intentEdit:
		s.state = ApplyEdit(s.state, in.code)
		s.send(ctx, proto.SyncCode(s.state.RoomID, s.state.Self.Name, in.code))
		s.publish()
	case intentSubmit:
		s.send(ctx, proto.SubmitCode(s.state.RoomID, s.state.Self.Name, s.state.Self.Code))
	}
}

func (s *Session) send(ctx context.Context, in proto.Intent) {
	if err := s.transport.Send(ctx, in); err != nil {
		if errors.Is(err, ErrNotConnected) {
			s.log.Debug().Str("type", in.Type).Msg("dropping send, transport not open")
			return
		}
		s.log.Warn().Err(err).Str("type", in.Type).Msg("send failed")
	}
}

func (s *Session) publish() {
	select {
	case s.snapshots <- s.state:
		return
	default:
	}

	// Buffer full: evict the oldest snapshot so the newest is never the
	// one lost. The loop is the only sender, so after draining one slot
	// the retry cannot fail.
	select {
	case <-s.snapshots:
	default:
	}
	select {
	case s.snapshots <- s.state:
	default:
	}
}
