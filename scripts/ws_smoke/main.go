package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/coderace-dev/coderace/internal/proto"
)

// Drives one full race against a running server: two connections join the
// same room, wait out the countdown, sync a bit of code, and the first
// player submits. Exits zero when race_finished arrives on both sides.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:9000/ws", "WebSocket address")
	room := flag.String("room", "smoke-room", "room id to race in")
	code := flag.String("code", "def sum(a,b):\n    return a+b", "code the first player submits")
	timeout := flag.Duration("timeout", 30*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	alice, err := dialAndJoin(ctx, *addr, *room, "smoke-alice")
	if err != nil {
		return err
	}
	defer alice.Close(websocket.StatusNormalClosure, "bye")

	bob, err := dialAndJoin(ctx, *addr, *room, "smoke-bob")
	if err != nil {
		return err
	}
	defer bob.Close(websocket.StatusNormalClosure, "bye")

	if err := waitFor(ctx, alice, "alice", proto.TypeRaceStarted); err != nil {
		return err
	}
	if err := waitFor(ctx, bob, "bob", proto.TypeRaceStarted); err != nil {
		return err
	}

	if err := wsjson.Write(ctx, alice, proto.SyncCode(*room, "smoke-alice", *code)); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := waitFor(ctx, bob, "bob", proto.TypeCodeUpdate); err != nil {
		return err
	}

	if err := wsjson.Write(ctx, alice, proto.SubmitCode(*room, "smoke-alice", *code)); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	for _, side := range []struct {
		name string
		conn *websocket.Conn
	}{{"alice", alice}, {"bob", bob}} {
		if err := waitFor(ctx, side.conn, side.name, proto.TypeRaceFinished); err != nil {
			return err
		}
	}

	fmt.Println("race completed")
	return nil
}

func dialAndJoin(ctx context.Context, addr, room, user string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", user, err)
	}
	if err := wsjson.Write(ctx, conn, proto.JoinRoom(room, user)); err != nil {
		conn.Close(websocket.StatusNormalClosure, "bye")
		return nil, fmt.Errorf("join %s: %w", user, err)
	}
	return conn, nil
}

// waitFor reads frames until one of the wanted type arrives, printing
// everything seen along the way.
func waitFor(ctx context.Context, conn *websocket.Conn, who, wantType string) error {
	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			return fmt.Errorf("%s read: %w", who, err)
		}

		ev, err := proto.DecodeEvent(raw)
		if err != nil {
			fmt.Printf("[%s] undecodable frame: %s\n", who, raw)
			continue
		}
		fmt.Printf("[%s] %#v\n", who, ev)

		if fault, ok := ev.(proto.ErrorEvent); ok {
			return fmt.Errorf("%s got server error: %s", who, fault.Message)
		}
		if matchesType(ev, wantType) {
			return nil
		}
	}
}

func matchesType(ev proto.ServerEvent, wantType string) bool {
	switch ev.(type) {
	case proto.RaceStarted:
		return wantType == proto.TypeRaceStarted
	case proto.CodeUpdate:
		return wantType == proto.TypeCodeUpdate
	case proto.RaceFinished:
		return wantType == proto.TypeRaceFinished
	case proto.GameOver:
		return wantType == proto.TypeGameOver
	default:
		return false
	}
}
