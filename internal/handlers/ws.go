package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/middleware"
	"github.com/ember-vale/api/internal/presence"
)

const wsWriteWait = 10 * time.Second

// WSHandler keeps presence alive over a websocket instead of polled
// heartbeats. Opening the socket marks the user online, each heartbeat
// message refreshes last-seen, and closing it marks them offline.
type WSHandler struct {
	presence *presence.Tracker
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSHandler creates a new websocket presence handler.
func NewWSHandler(tracker *presence.Tracker, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		presence: tracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The HTTP layer already handles CORS; game clients are not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

type wsClientMessage struct {
	Type string `json:"type"`
}

type wsServerMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"server_time"`
}

// Serve handles GET /ws. The caller must already be authenticated; the
// connection is bound to their user id for its whole lifetime.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.presence.Connect(userID)
	h.logger.Info("websocket connected", zap.String("user_id", userID))

	defer func() {
		h.presence.Disconnect(userID)
		conn.Close()
		h.logger.Info("websocket disconnected", zap.String("user_id", userID))
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "heartbeat":
			h.presence.Touch(userID)
			ack := wsServerMessage{Type: "heartbeat", ServerTime: time.Now().Unix()}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ack); err != nil {
				return
			}
		}
	}
}
