package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades authorized requests and attaches them to the hub.
type Handler struct {
	hub      *Hub
	poster   Poster
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a Handler. An empty allowedOrigins list accepts any origin.
func NewHandler(hub *Hub, poster Poster, allowedOrigins []string, logger zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:    hub,
		poster: poster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
		logger: logger,
	}
}

// Serve upgrades the connection for a user already checked to be a channel member.
func (h *Handler) Serve(c *gin.Context, channelID, userID int64) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("channelID", channelID).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:       h.hub,
		poster:    h.poster,
		conn:      conn,
		send:      make(chan []byte, 256),
		userID:    userID,
		channelID: channelID,
		logger:    h.logger,
	}
	if !h.hub.attach(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
