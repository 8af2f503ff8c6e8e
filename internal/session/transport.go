package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/coderace-dev/coderace/internal/proto"
)

// ErrNotConnected is returned by Send before the connection opens or
// after it closes. The session loop treats it as a dropped send, never
// as a fault.
var ErrNotConnected = errors.New("transport not connected")

// Transport owns exactly one bidirectional message-stream connection for
// the lifetime of a session. Decoded server events arrive on Events;
// the channel closes when the connection does.
type Transport interface {
	Connect(ctx context.Context, url string) error
	Events() <-chan proto.ServerEvent
	Send(ctx context.Context, in proto.Intent) error
	Close() error
}

// WSTransport is the WebSocket Transport implementation.
type WSTransport struct {
	log    *zerolog.Logger
	events chan proto.ServerEvent

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWSTransport builds an unconnected WebSocket transport.
func NewWSTransport(logger *zerolog.Logger) *WSTransport {
	return &WSTransport{
		log:    logger,
		events: make(chan proto.ServerEvent, 32),
	}
}

// Connect dials the server and starts the read pump.
func (t *WSTransport) Connect(ctx context.Context, url string) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "closing")
		return ErrNotConnected
	}
	t.conn = conn
	t.mu.Unlock()

	go t.readPump(ctx, conn)
	return nil
}

// Events returns the channel of decoded inbound events.
func (t *WSTransport) Events() <-chan proto.ServerEvent {
	return t.events
}

// Send writes an intent frame. Sends issued before Connect or after
// Close return ErrNotConnected and are dropped, not buffered.
func (t *WSTransport) Send(ctx context.Context, in proto.Intent) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if conn == nil || closed {
		return ErrNotConnected
	}
	return wsjson.Write(ctx, conn, in)
}

// Close tears the connection down. Idempotent; safe on every exit path.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (t *WSTransport) readPump(ctx context.Context, conn *websocket.Conn) {
	defer close(t.events)

	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				t.log.Debug().Err(err).Msg("ws read ended")
			}
			return
		}

		ev, err := proto.DecodeEvent(raw)
		if err != nil {
			// Unknown discriminants are dropped silently for forward
			// compatibility; malformed frames are dropped and logged.
			if !errors.Is(err, proto.ErrUnknownType) {
				t.log.Warn().Err(err).Msg("dropping malformed frame")
			}
			continue
		}

		select {
		case t.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
