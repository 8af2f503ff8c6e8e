package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/coderace-dev/coderace/internal/grader"
	"github.com/coderace-dev/coderace/internal/problem"
	"github.com/coderace-dev/coderace/internal/proto"
)

// Config tunes the hub's timing.
type Config struct {
	// CountdownFrom is the first countdown value broadcast when a room
	// fills up.
	CountdownFrom int
	// CountdownInterval is the pause between countdown values.
	CountdownInterval time.Duration
	// RaceDuration is how long a race runs before game_over.
	RaceDuration time.Duration
}

// DefaultConfig returns the production timing: 5..1 one second apart,
// five-minute races.
func DefaultConfig() Config {
	return Config{
		CountdownFrom:     5,
		CountdownInterval: time.Second,
		RaceDuration:      5 * time.Minute,
	}
}

type commandEnvelope struct {
	client *Client
	cmd    *Command
}

// countdownTick carries one countdown step back into the hub loop.
// A zero value means the countdown finished and the race starts. The
// generation ties the tick to one countdown attempt so steps from an
// aborted attempt cannot leak into a restarted one.
type countdownTick struct {
	roomID string
	gen    int
	value  int
}

type gradedSubmission struct {
	roomID   string
	username string
	result   grader.Result
	err      error
}

// Hub coordinates all race rooms. A single goroutine owns every room and
// client mapping; countdowns, race clocks, and grading run in helper
// goroutines that report back through channels, so no locking is needed.
type Hub struct {
	log    *zerolog.Logger
	bank   *problem.Bank
	grader grader.Grader
	cfg    Config

	register   chan *Client
	unregister chan *Client
	commands   chan commandEnvelope
	ticks      chan countdownTick
	expired    chan string
	graded     chan gradedSubmission

	clients map[*Client]struct{}
	rooms   map[string]*Room
}

// NewHub creates a hub over a problem bank and a grader. Zero config
// fields fall back to DefaultConfig values.
func NewHub(bank *problem.Bank, g grader.Grader, cfg Config, logger *zerolog.Logger) *Hub {
	def := DefaultConfig()
	if cfg.CountdownFrom == 0 {
		cfg.CountdownFrom = def.CountdownFrom
	}
	if cfg.CountdownInterval == 0 {
		cfg.CountdownInterval = def.CountdownInterval
	}
	if cfg.RaceDuration == 0 {
		cfg.RaceDuration = def.RaceDuration
	}

	return &Hub{
		log:        logger,
		bank:       bank,
		grader:     g,
		cfg:        cfg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan commandEnvelope, 64),
		ticks:      make(chan countdownTick, 16),
		expired:    make(chan string, 16),
		graded:     make(chan gradedSubmission, 16),
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]*Room),
	}
}

// RegisterClient hands a connected client to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a client, typically on disconnect.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes hub traffic until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.pump(ctx, c)

		case c := <-h.unregister:
			h.handleDisconnect(c)

		case env := <-h.commands:
			if _, ok := h.clients[env.client]; !ok {
				continue
			}
			h.handleCommand(ctx, env.client, env.cmd)

		case t := <-h.ticks:
			h.handleTick(ctx, t)

		case roomID := <-h.expired:
			h.handleExpired(roomID)

		case g := <-h.graded:
			h.handleGraded(g)
		}
	}
}

// pump forwards one client's commands into the hub loop. It exits when
// the client's command channel closes or the hub stops.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- commandEnvelope{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd)
	case CommandSyncCode:
		h.handleSync(c, cmd)
	case CommandSubmitCode:
		h.handleSubmit(ctx, c, cmd)
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, cmd *Command) {
	if c.room != "" {
		h.sendError(c, coreError(ErrCodeBadRequest, "already in a room"))
		return
	}

	room, ok := h.rooms[cmd.RoomID]
	if !ok {
		room = NewRoom(cmd.RoomID, h.bank.Random())
		h.rooms[cmd.RoomID] = room
		h.log.Info().Str("room", cmd.RoomID).Str("problem", room.Question.Title).Msg("room created")
	}

	if room.Status != StatusWaiting {
		h.sendError(c, coreError(ErrCodeRoomFull, "room is full"))
		return
	}
	if err := room.AddPlayer(cmd.Username, c); err != nil {
		h.sendError(c, err)
		return
	}
	c.room = cmd.RoomID
	c.name = cmd.Username
	h.log.Info().Str("room", room.ID).Str("player", cmd.Username).Msg("player joined")

	if room.Full() {
		room.Status = StatusCountdown
		room.Broadcast(proto.PlayerJoined{
			Username: cmd.Username,
			Players:  room.PlayerPair(),
		})
		cdCtx, cancel := context.WithCancel(ctx)
		room.countdownGen++
		room.countdownCancel = cancel
		go h.runCountdown(cdCtx, room.ID, room.countdownGen)
	}
}

func (h *Hub) handleSync(c *Client, cmd *Command) {
	room := h.roomOf(c)
	if room == nil || room.Status == StatusCompleted {
		// Late syncs after completion are dropped, not errors.
		return
	}
	room.SetCode(c.name, cmd.Code)
	// The sender never receives an echo of its own code.
	room.BroadcastExcept(c.name, proto.CodeUpdate{Username: c.name, Code: cmd.Code})
}

func (h *Hub) handleSubmit(ctx context.Context, c *Client, cmd *Command) {
	room := h.roomOf(c)
	if room == nil || room.Status != StatusActive {
		return
	}
	room.SetCode(c.name, cmd.Code)

	go func(roomID, username, code string, q *problem.Problem) {
		res, err := h.grader.Grade(ctx, code, q)
		select {
		case h.graded <- gradedSubmission{roomID: roomID, username: username, result: res, err: err}:
		case <-ctx.Done():
		}
	}(room.ID, c.name, cmd.Code, room.Question)
}

func (h *Hub) handleGraded(g gradedSubmission) {
	room, ok := h.rooms[g.roomID]
	if !ok || room.Status != StatusActive {
		return
	}

	res := g.result
	if g.err != nil {
		h.log.Warn().Err(g.err).Str("room", g.roomID).Str("player", g.username).Msg("grading failed")
		res = grader.Result{Success: false, Results: []string{"grading error: " + g.err.Error()}}
	}

	room.Broadcast(proto.SubmissionResult{
		Username: g.username,
		Success:  res.Success,
		Results:  res.Results,
	})

	if res.Success {
		h.finishRace(room, g.username)
	}
}

func (h *Hub) handleTick(ctx context.Context, t countdownTick) {
	room, ok := h.rooms[t.roomID]
	if !ok || room.Status != StatusCountdown || t.gen != room.countdownGen {
		return
	}

	if t.value > 0 {
		room.Broadcast(proto.Countdown{Value: t.value})
		return
	}

	room.StopCountdown()
	room.Status = StatusActive
	room.Broadcast(proto.RaceStarted{
		Question: room.Question.Public(),
		Duration: int(h.cfg.RaceDuration / time.Second),
	})
	h.log.Info().Str("room", room.ID).Msg("race started")

	clockCtx, cancel := context.WithCancel(ctx)
	room.cancel = cancel
	go h.runRaceClock(clockCtx, room.ID)
}

func (h *Hub) handleExpired(roomID string) {
	room, ok := h.rooms[roomID]
	if !ok || room.Status != StatusActive {
		return
	}
	room.Status = StatusCompleted
	room.StopClock()
	room.Broadcast(proto.GameOver{})
	h.log.Info().Str("room", roomID).Msg("race timed out")
}

func (h *Hub) handleDisconnect(c *Client) {
	delete(h.clients, c)

	if c.room == "" {
		return
	}
	room, ok := h.rooms[c.room]
	c.room = ""
	name := c.name
	c.name = ""
	if !ok {
		return
	}

	room.RemovePlayer(name)
	h.log.Info().Str("room", room.ID).Str("player", name).Msg("player left")

	if room.Empty() {
		room.StopClock()
		room.StopCountdown()
		delete(h.rooms, room.ID)
		return
	}

	switch room.Status {
	case StatusActive:
		// A mid-race departure forfeits to the remaining player.
		h.finishRace(room, room.Other(name))
	case StatusCountdown:
		room.StopCountdown()
		room.Status = StatusWaiting
	}
}

func (h *Hub) finishRace(room *Room, winner string) {
	room.Status = StatusCompleted
	room.StopClock()
	room.Broadcast(proto.RaceFinished{Winner: winner})
	h.log.Info().Str("room", room.ID).Str("winner", winner).Msg("race finished")
}

// runCountdown paces the pre-race countdown outside the hub loop and
// reports each step through the ticks channel. A zero tick starts the
// race.
func (h *Hub) runCountdown(ctx context.Context, roomID string, gen int) {
	for v := h.cfg.CountdownFrom; v > 0; v-- {
		select {
		case h.ticks <- countdownTick{roomID: roomID, gen: gen, value: v}:
		case <-ctx.Done():
			return
		}
		select {
		case <-time.After(h.cfg.CountdownInterval):
		case <-ctx.Done():
			return
		}
	}
	select {
	case h.ticks <- countdownTick{roomID: roomID, gen: gen, value: 0}:
	case <-ctx.Done():
	}
}

func (h *Hub) runRaceClock(ctx context.Context, roomID string) {
	select {
	case <-time.After(h.cfg.RaceDuration):
		select {
		case h.expired <- roomID:
		case <-ctx.Done():
		}
	case <-ctx.Done():
	}
}

func (h *Hub) roomOf(c *Client) *Room {
	if c.room == "" {
		return nil
	}
	return h.rooms[c.room]
}

func (h *Hub) sendError(c *Client, err *CoreError) {
	select {
	case c.Events <- proto.ErrorEvent{Message: err.Message}:
	default:
	}
}
