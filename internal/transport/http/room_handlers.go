package http

import (
	stdhttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoomHandlers provides HTTP handlers for room management endpoints.
// Rooms are created lazily on first join, so minting is just an opaque
// id plus the shareable link; ids generated client-side work the same.
type RoomHandlers struct {
	baseURL string
	log     *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(baseURL string, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger,
	}
}

// RoomResponse is the body returned for a freshly minted room.
type RoomResponse struct {
	RoomID string `json:"room_id"`
	Link   string `json:"link"`
}

// CreateRoom mints a room id and its shareable join link.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	roomID := uuid.NewString()
	h.log.Debug().Str("room", roomID).Msg("room id minted")

	c.JSON(stdhttp.StatusOK, RoomResponse{
		RoomID: roomID,
		Link:   h.baseURL + "/race/" + roomID,
	})
}
