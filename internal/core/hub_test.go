package core

import (
	"context"
	"testing"
	"time"

	"github.com/coderace-dev/coderace/internal/grader"
	"github.com/coderace-dev/coderace/internal/log"
	"github.com/coderace-dev/coderace/internal/problem"
	"github.com/coderace-dev/coderace/internal/proto"
)

func testBank(t *testing.T) *problem.Bank {
	t.Helper()

	bank, err := problem.NewBank([]problem.Problem{{
		Title:        "Sum",
		Description:  "add two numbers",
		StartingCode: "def sum(a,b):\n    pass",
		PublicTests:  []string{"assert sum(1,2) == 3"},
		PrivateTests: []string{"assert sum(-1,1) == 0"},
	}}, nil)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	return bank
}

func startHub(t *testing.T, g grader.Grader, cfg Config) *Hub {
	t.Helper()

	if cfg.CountdownFrom == 0 {
		cfg.CountdownFrom = 3
	}
	if cfg.CountdownInterval == 0 {
		cfg.CountdownInterval = time.Millisecond
	}
	if cfg.RaceDuration == 0 {
		cfg.RaceDuration = 30 * time.Second
	}

	hub := NewHub(testBank(t), g, cfg, log.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func join(hub *Hub, id, room, name string) *Client {
	c := NewClient(id)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoinRoom, RoomID: room, Username: name}
	return c
}

// joinTwo brings alice and bob into a room and consumes everything up to
// and including race_started on both clients.
func joinTwo(t *testing.T, hub *Hub, room string) (alice, bob *Client) {
	t.Helper()

	alice = join(hub, "a", room, "alice")
	bob = join(hub, "b", room, "bob")

	for _, c := range []*Client{alice, bob} {
		joined := mustEvent[proto.PlayerJoined](t, c.Events)
		if joined.Players != [2]string{"alice", "bob"} {
			t.Fatalf("player pair = %v", joined.Players)
		}
		started := mustEvent[proto.RaceStarted](t, c.Events)
		if started.Question == nil || started.Question.Title != "Sum" {
			t.Fatalf("race started without question: %+v", started)
		}
	}
	return alice, bob
}

func TestHubCountdownThenRaceStarted(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{CountdownFrom: 3, RaceDuration: 30 * time.Second})

	alice := join(hub, "a", "room-1", "alice")
	bob := join(hub, "b", "room-1", "bob")

	for _, c := range []*Client{alice, bob} {
		mustEvent[proto.PlayerJoined](t, c.Events)

		for want := 3; want >= 1; want-- {
			cd := mustEvent[proto.Countdown](t, c.Events)
			if cd.Value != want {
				t.Fatalf("countdown = %d, want %d", cd.Value, want)
			}
		}

		started := mustEvent[proto.RaceStarted](t, c.Events)
		if started.Duration != 30 {
			t.Fatalf("duration = %d, want 30", started.Duration)
		}
		if len(started.Question.PublicTests) != 0 || len(started.Question.PrivateTests) != 0 {
			t.Fatalf("test lists leaked over the wire: %+v", started.Question)
		}
	}
}

func TestHubRejectsDuplicateName(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{})

	join(hub, "a", "room-1", "alice")
	impostor := join(hub, "b", "room-1", "alice")

	ev := mustEvent[proto.ErrorEvent](t, impostor.Events)
	if ev.Message != "name already taken!" {
		t.Fatalf("error message = %q", ev.Message)
	}
}

func TestHubRejectsThirdPlayer(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{})

	joinTwo(t, hub, "room-1")
	third := join(hub, "c", "room-1", "carol")

	ev := mustEvent[proto.ErrorEvent](t, third.Events)
	if ev.Message != "room is full" {
		t.Fatalf("error message = %q", ev.Message)
	}
}

func TestHubRelaysCodeWithoutEcho(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{})
	alice, bob := joinTwo(t, hub, "room-1")

	alice.Commands <- &Command{Kind: CommandSyncCode, RoomID: "room-1", Username: "alice", Code: "x = 1"}

	update := mustEvent[proto.CodeUpdate](t, bob.Events)
	if update.Username != "alice" || update.Code != "x = 1" {
		t.Fatalf("code update = %+v", update)
	}

	assertNoEvent(t, alice.Events, func(ev proto.ServerEvent) bool {
		_, isUpdate := ev.(proto.CodeUpdate)
		return isUpdate
	})
}

func TestHubSuccessfulSubmissionWinsRace(t *testing.T) {
	hub := startHub(t, grader.Static{Result: grader.Result{
		Success: true,
		Results: []string{"Public test 1 passed.", "Private test 1 passed."},
	}}, Config{})
	alice, bob := joinTwo(t, hub, "room-1")

	alice.Commands <- &Command{Kind: CommandSubmitCode, RoomID: "room-1", Username: "alice", Code: "def sum(a,b):\n    return a+b"}

	for _, c := range []*Client{alice, bob} {
		res := mustEvent[proto.SubmissionResult](t, c.Events)
		if res.Username != "alice" || !res.Success {
			t.Fatalf("submission result = %+v", res)
		}
		finished := mustEvent[proto.RaceFinished](t, c.Events)
		if finished.Winner != "alice" {
			t.Fatalf("winner = %q", finished.Winner)
		}
	}

	// Completed rooms drop late traffic.
	bob.Commands <- &Command{Kind: CommandSyncCode, RoomID: "room-1", Username: "bob", Code: "late"}
	assertNoEvent(t, alice.Events, func(ev proto.ServerEvent) bool {
		_, isUpdate := ev.(proto.CodeUpdate)
		return isUpdate
	})
}

func TestHubFailedSubmissionKeepsRacing(t *testing.T) {
	hub := startHub(t, grader.Static{Result: grader.Result{
		Success: false,
		Results: []string{"Public test 1 failed: assert sum(1,2) == 3"},
	}}, Config{})
	alice, bob := joinTwo(t, hub, "room-1")

	bob.Commands <- &Command{Kind: CommandSubmitCode, RoomID: "room-1", Username: "bob", Code: "def sum(a,b):\n    return 0"}

	for _, c := range []*Client{alice, bob} {
		res := mustEvent[proto.SubmissionResult](t, c.Events)
		if res.Username != "bob" || res.Success {
			t.Fatalf("submission result = %+v", res)
		}
	}

	assertNoEvent(t, alice.Events, func(ev proto.ServerEvent) bool {
		_, finished := ev.(proto.RaceFinished)
		return finished
	})

	// The race is still on: code keeps flowing.
	alice.Commands <- &Command{Kind: CommandSyncCode, RoomID: "room-1", Username: "alice", Code: "retrying"}
	mustEvent[proto.CodeUpdate](t, bob.Events)
}

func TestHubGameOverOnExpiry(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{RaceDuration: 50 * time.Millisecond})
	alice, bob := joinTwo(t, hub, "room-1")

	mustEvent[proto.GameOver](t, alice.Events)
	mustEvent[proto.GameOver](t, bob.Events)
}

func TestHubForfeitOnMidRaceDisconnect(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{})
	alice, bob := joinTwo(t, hub, "room-1")

	hub.UnregisterClient(bob)

	finished := mustEvent[proto.RaceFinished](t, alice.Events)
	if finished.Winner != "alice" {
		t.Fatalf("winner = %q, want alice (forfeit)", finished.Winner)
	}
}

func TestHubCountdownRestartsCleanlyAfterMidCountdownLeave(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{
		CountdownFrom:     4,
		CountdownInterval: 200 * time.Millisecond,
	})

	alice := join(hub, "a", "room-1", "alice")
	bob := join(hub, "b", "room-1", "bob")

	mustEvent[proto.PlayerJoined](t, alice.Events)
	if cd := mustEvent[proto.Countdown](t, alice.Events); cd.Value != 4 {
		t.Fatalf("first countdown value = %d", cd.Value)
	}

	// Bob bails mid-countdown; carol takes the open slot.
	hub.UnregisterClient(bob)
	carol := join(hub, "c", "room-1", "carol")

	joined := mustEvent[proto.PlayerJoined](t, alice.Events)
	if joined.Players != [2]string{"alice", "carol"} {
		t.Fatalf("player pair = %v", joined.Players)
	}

	// The fresh countdown must run by itself: an exact 4..1 with no
	// interleaved ticks from the aborted attempt, and no early start off
	// its zero tick.
	for want := 4; want >= 1; want-- {
		ev := nextEvent(t, alice.Events)
		cd, ok := ev.(proto.Countdown)
		if !ok || cd.Value != want {
			t.Fatalf("event = %#v, want countdown %d", ev, want)
		}
	}
	last := nextEvent(t, alice.Events)
	if _, ok := last.(proto.RaceStarted); !ok {
		t.Fatalf("event after countdown = %#v, want race_started", last)
	}

	mustEvent[proto.RaceStarted](t, carol.Events)
}

func TestHubDisconnectBeforeStartReopensSlot(t *testing.T) {
	hub := startHub(t, grader.Static{}, Config{})

	alice := join(hub, "a", "room-1", "alice")
	hub.UnregisterClient(alice)

	// The whole room died with its last player: a new pair can reuse the id.
	joinTwo(t, hub, "room-1")
}
