// Package ws attaches websocket clients to the hub. One goroutine per
// connection reads requests; responses and server pushes share the hub's
// serialized write path.
package ws

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ringrace/server"
)

type Handler struct {
	hub      *server.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, log zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the connection and runs the read loop until the client
// goes away. The player must have joined first; the id arrives as a query
// parameter.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	playerID := r.URL.Query().Get("id")
	if playerID == "" {
		nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("player", playerID).Msg("upgrade failed")
		return
	}

	if !h.hub.Subscribe(playerID, conn) {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			// Scoped to this connection: a read loop whose conn was
			// replaced by a reconnect must not tear down the player.
			h.hub.Unsubscribe(playerID, conn)
			return
		}

		var msg server.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Debug().Err(err).Str("player", playerID).Msg("discarding malformed message")
			continue
		}

		if responses := h.hub.Dispatch(playerID, msg); len(responses) > 0 {
			h.hub.Send(playerID, responses...)
		}
	}
}
