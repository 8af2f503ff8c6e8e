package core

import (
	"testing"
	"time"

	"github.com/coderace-dev/coderace/internal/proto"
)

// mustEvent waits for the next event of type T on the channel, skipping
// events of other kinds.
func mustEvent[T proto.ServerEvent](t *testing.T, ch <-chan proto.ServerEvent) T {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if typed, ok := ev.(T); ok {
				return typed
			}
		case <-deadline:
			var zero T
			t.Fatalf("expected event %T not received", zero)
			return zero
		}
	}
}

// nextEvent returns the next event on the channel, whatever its kind.
func nextEvent(t *testing.T, ch <-chan proto.ServerEvent) proto.ServerEvent {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event within deadline")
		return nil
	}
}

// assertNoEvent fails if an event matching the predicate shows up within
// the grace window.
func assertNoEvent(t *testing.T, ch <-chan proto.ServerEvent, match func(proto.ServerEvent) bool) {
	t.Helper()

	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case ev := <-ch:
			if match(ev) {
				t.Fatalf("unexpected event %#v", ev)
			}
		case <-deadline:
			return
		}
	}
}
