package core

import "github.com/coderace-dev/coderace/internal/proto"

// Client is a connected participant as seen by the core layer. The room
// and name fields are owned by the hub goroutine after join.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan proto.ServerEvent

	room string
	name string
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan proto.ServerEvent, 32),
	}
}
