package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom claims a player slot in a room, creating the room
	// on first join.
	CommandJoinRoom CommandKind = iota
	// CommandSyncCode relays the sender's latest code to the opponent.
	CommandSyncCode
	// CommandSubmitCode sends the sender's code to the grader.
	CommandSubmitCode
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	RoomID   string
	Username string
	Code     string
}
