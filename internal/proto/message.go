package proto

import "github.com/coderace-dev/coderace/internal/problem"

// Message type tags. These are the wire-format discriminants; every frame
// is a flat JSON object with a "type" field plus type-specific fields.
const (
	// client -> server
	TypeJoinRoom   = "join_room"
	TypeSyncCode   = "sync_code"
	TypeSubmitCode = "submit_code"

	// server -> client
	TypeCountdown        = "countdown"
	TypeRaceStarted      = "race_started"
	TypeCodeUpdate       = "code_update"
	TypeSubmissionResult = "submission_result"
	TypePlayerJoined     = "player_joined"
	TypeRaceFinished     = "race_finished"
	TypeGameOver         = "game_over"
	TypeError            = "error"
)

// Intent is the envelope for messages going from client to server.
// Every intent carries the room id and the sender's display name for
// server-side routing.
type Intent struct {
	Type     string  `json:"type"`
	RoomID   string  `json:"room_id"`
	Username string  `json:"username"`
	Code     *string `json:"code,omitempty"`
}

// JoinRoom builds the intent sent exactly once after connect.
func JoinRoom(roomID, username string) Intent {
	return Intent{Type: TypeJoinRoom, RoomID: roomID, Username: username}
}

// SyncCode builds the per-edit code broadcast intent.
func SyncCode(roomID, username, code string) Intent {
	return Intent{Type: TypeSyncCode, RoomID: roomID, Username: username, Code: &code}
}

// SubmitCode builds the explicit submission intent.
func SubmitCode(roomID, username, code string) Intent {
	return Intent{Type: TypeSubmitCode, RoomID: roomID, Username: username, Code: &code}
}

// frame is the superset wire shape for server -> client messages.
type frame struct {
	Type      string           `json:"type"`
	Countdown *int             `json:"countdown,omitempty"`
	Question  *problem.Problem `json:"question,omitempty"`
	Time      int              `json:"time,omitempty"`
	Username  string           `json:"username,omitempty"`
	Code      *string          `json:"code,omitempty"`
	Success   *bool            `json:"success,omitempty"`
	Results   []string         `json:"results,omitempty"`
	Players   []string         `json:"players,omitempty"`
	Winner    string           `json:"winner,omitempty"`
	Message   string           `json:"message,omitempty"`
}
