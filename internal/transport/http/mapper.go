package http

import (
	"github.com/coderace-dev/coderace/internal/core"
	"github.com/coderace-dev/coderace/internal/proto"
)

// intentToCommand maps a validated wire intent to a hub command.
func intentToCommand(in proto.Intent) *core.Command {
	cmd := &core.Command{
		RoomID:   in.RoomID,
		Username: in.Username,
	}
	if in.Code != nil {
		cmd.Code = *in.Code
	}

	switch in.Type {
	case proto.TypeJoinRoom:
		cmd.Kind = core.CommandJoinRoom
	case proto.TypeSyncCode:
		cmd.Kind = core.CommandSyncCode
	case proto.TypeSubmitCode:
		cmd.Kind = core.CommandSubmitCode
	}
	return cmd
}
