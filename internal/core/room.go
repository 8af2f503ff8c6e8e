package core

import (
	"context"

	"github.com/coderace-dev/coderace/internal/problem"
	"github.com/coderace-dev/coderace/internal/proto"
)

// RoomStatus is the server-side lifecycle of a race room.
type RoomStatus int

const (
	// StatusWaiting means the room holds fewer than two players.
	StatusWaiting RoomStatus = iota
	// StatusCountdown means both players joined and the countdown runs.
	StatusCountdown
	// StatusActive means the race is on.
	StatusActive
	// StatusCompleted is terminal: won, timed out, or forfeited.
	StatusCompleted
)

const maxPlayers = 2

// Room groups the two players racing on the same problem. All fields are
// owned by the hub goroutine.
type Room struct {
	ID       string
	Question *problem.Problem
	Status   RoomStatus

	players map[string]*Client
	order   []string
	code    map[string]string

	// cancel stops the room's race clock, if one is running.
	cancel context.CancelFunc

	// countdown state, owned by the hub goroutine. The generation guards
	// the tick handler against ticks from an aborted countdown.
	countdownGen    int
	countdownCancel context.CancelFunc
}

// NewRoom constructs a waiting room around a drawn problem.
func NewRoom(id string, q *problem.Problem) *Room {
	return &Room{
		ID:       id,
		Question: q,
		Status:   StatusWaiting,
		players:  make(map[string]*Client),
		code:     make(map[string]string),
	}
}

// AddPlayer claims a slot for the named player. Returns a CoreError when
// the name is taken or the room is full.
func (r *Room) AddPlayer(name string, c *Client) *CoreError {
	if _, taken := r.players[name]; taken {
		return coreError(ErrCodeNameTaken, "name already taken!")
	}
	if len(r.players) >= maxPlayers {
		return coreError(ErrCodeRoomFull, "room is full")
	}
	r.players[name] = c
	r.order = append(r.order, name)
	r.code[name] = r.Question.StartingCode
	return nil
}

// RemovePlayer drops the named player. Returns true if they were present.
func (r *Room) RemovePlayer(name string) bool {
	if _, ok := r.players[name]; !ok {
		return false
	}
	delete(r.players, name)
	delete(r.code, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Full reports whether both slots are claimed.
func (r *Room) Full() bool {
	return len(r.players) == maxPlayers
}

// Empty reports whether no players remain.
func (r *Room) Empty() bool {
	return len(r.players) == 0
}

// PlayerPair returns player names in join order. Only meaningful when
// the room is full.
func (r *Room) PlayerPair() [2]string {
	var pair [2]string
	copy(pair[:], r.order)
	return pair
}

// Other returns the name of the player that is not the given one, or ""
// if there is no such player.
func (r *Room) Other(name string) string {
	for _, n := range r.order {
		if n != name {
			return n
		}
	}
	return ""
}

// SetCode records a player's latest source text.
func (r *Room) SetCode(name, code string) {
	if _, ok := r.players[name]; ok {
		r.code[name] = code
	}
}

// Broadcast sends an event to every player in the room.
func (r *Room) Broadcast(ev proto.ServerEvent) {
	for _, c := range r.players {
		select {
		case c.Events <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}

// BroadcastExcept sends an event to everyone but the named player.
func (r *Room) BroadcastExcept(name string, ev proto.ServerEvent) {
	for n, c := range r.players {
		if n == name {
			continue
		}
		select {
		case c.Events <- ev:
		default:
		}
	}
}

// StopClock cancels the race clock if one is running.
func (r *Room) StopClock() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// StopCountdown cancels an in-flight countdown. Ticks it already queued
// are discarded by their generation.
func (r *Room) StopCountdown() {
	if r.countdownCancel != nil {
		r.countdownCancel()
		r.countdownCancel = nil
	}
}
