package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"crosstalk/internal/session"
	"crosstalk/internal/websocket"
	"crosstalk/pkg/interfaces"
	"crosstalk/pkg/types"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Identity and origin policy are the deployment's concern; the server
	// sits behind a gateway that enforces both.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades ?room=<slug-or-id>&user=<id> into a chat session
// and blocks until it ends.
func (s *Server) handleWebSocket(c *gin.Context) {
	userID := c.Query("user")
	roomKey := c.Query("room")

	if !types.IsValidUserID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if roomKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room is required"})
		return
	}

	// Unknown room is terminal before the upgrade; the client gets a plain
	// HTTP 404 instead of a doomed socket.
	chatRoom, err := s.rooms.GetRoomBySlug(c.Request.Context(), roomKey)
	if errors.Is(err, interfaces.ErrRoomNotFound) {
		chatRoom, err = s.rooms.GetRoom(c.Request.Context(), roomKey)
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve room"})
		return
	}

	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "api").Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := websocket.NewConnection(raw, websocket.Options{
		WriteTimeout: s.cfg.WebSocket.WriteTimeout,
		BufferSize:   s.cfg.WebSocket.BufferSize,
	})

	sess := session.New(conn, chatRoom, userID, s.store, s.directory, s.coordinator, s.bus, s.replayer, session.Options{
		PingInterval: s.cfg.WebSocket.PingInterval,
		ReadTimeout:  s.cfg.WebSocket.ReadTimeout,
		FallbackLang: s.cfg.Translate.FallbackLanguage,
	})
	sess.Run()
}
