package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/server/middleware"
	"github.com/blockmarketai/marketplace/internal/server/websocket"
	"github.com/blockmarketai/marketplace/pkg/config"
)

type WebSocketHandler struct {
	hub      *websocket.WsHub
	upgrader gorillaws.Upgrader
	logger   zerolog.Logger
}

func NewWebSocketHandler(hub *websocket.WsHub, cfg *config.Config, logger zerolog.Logger) *WebSocketHandler {
	readBuffer := cfg.WebSocket.ReadBufferSize
	if readBuffer == 0 {
		readBuffer = 1024
	}
	writeBuffer := cfg.WebSocket.WriteBufferSize
	if writeBuffer == 0 {
		writeBuffer = 1024
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				if !cfg.WebSocket.CheckOrigin {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == cfg.Server.FrontendURL
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated request and subscribes the
// caller to their transaction events. The connection is read-only from
// the client side; inbound frames are drained and discarded.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &websocket.WsClient{
		UserID: userID.String(),
		Conn:   conn,
	}
	h.hub.Register <- client

	go func() {
		defer func() {
			h.hub.Unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
