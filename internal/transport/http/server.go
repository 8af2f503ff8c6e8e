package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/coderace-dev/coderace/internal/config"
	"github.com/coderace-dev/coderace/internal/core"
)

// NewServer builds the HTTP server: health, room minting, and the
// WebSocket race endpoint.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	rooms := NewRoomHandlers(cfg.BaseURL, logger)

	router.GET("/health", healthHandler)
	router.POST("/api/rooms", rooms.CreateRoom)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
